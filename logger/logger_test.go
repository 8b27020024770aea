/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"strings"
	"testing"
)

// TestLevel_String 测试日志级别的字符串表示
func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("Level(%d).String() = %q, want %q", test.level, got, test.expected)
		}
	}
}

// TestLoggerOutput 测试各级别的输出格式
func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	l.Debug("validated aggregate %s", "public.sum8")
	l.Info("registered aggregate id=%d", 1000)
	l.Warn("degraded")
	l.Error("insert failed: %v", "boom")

	output := buf.String()
	for _, want := range []string{
		"[DEBUG] validated aggregate public.sum8",
		"[INFO] registered aggregate id=1000",
		"[WARN] degraded",
		"[ERROR] insert failed: boom",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

// TestLoggerLevelFilter 测试级别过滤：低于当前级别的日志不输出
func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible warn")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("messages below WARN should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "visible warn") {
		t.Errorf("WARN message missing from output: %s", output)
	}

	// SetLevel 之后过滤规则随之变化
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("DEBUG message missing after SetLevel(DEBUG): %s", buf.String())
	}
}

// TestLoggerOff 测试 OFF 级别关闭全部输出
func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(OFF, &buf)

	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")

	if buf.Len() != 0 {
		t.Errorf("OFF logger should not write, got: %s", buf.String())
	}
}

// TestDiscardLogger 测试丢弃日志器
func TestDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
	l.SetLevel(DEBUG)
	// 无输出即通过，这里只确认不会崩溃
}

// TestDefaultLogger 测试全局默认日志器的替换与恢复
func TestDefaultLogger(t *testing.T) {
	old := GetDefault()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(NewLogger(INFO, &buf))

	Debug("not shown at INFO")
	Info("shown %s", "message")
	Warn("warn line")
	Error("error line")

	output := buf.String()
	if strings.Contains(output, "not shown") {
		t.Errorf("DEBUG should be filtered at INFO level: %s", output)
	}
	for _, want := range []string{"shown message", "warn line", "error line"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}
