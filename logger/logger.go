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

// Package logger provides leveled logging for setagg.
// 聚合定义与注册流程通过包级方法输出日志，输出后端可替换。
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Level 日志级别
type Level int

const (
	// DEBUG 调试级别，输出校验过程的细节信息
	DEBUG Level = iota
	// INFO 信息级别，输出注册等关键事件
	INFO
	// WARN 警告级别
	WARN
	// ERROR 错误级别
	ERROR
	// OFF 关闭日志输出
	OFF
)

// String returns the level name used in log lines.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Logger 日志接口。实现者负责级别过滤与格式化输出。
type Logger interface {
	// Debug 记录调试级别日志
	Debug(format string, args ...interface{})
	// Info 记录信息级别日志
	Info(format string, args ...interface{})
	// Warn 记录警告级别日志
	Warn(format string, args ...interface{})
	// Error 记录错误级别日志
	Error(format string, args ...interface{})
	// SetLevel 设置日志级别
	SetLevel(level Level)
}

// defaultLogger 默认实现，输出 [时间戳] [级别] 消息 格式的行
type defaultLogger struct {
	level  Level
	logger *log.Logger
}

// NewLogger creates a logger writing lines at or above level to output.
func NewLogger(level Level, output io.Writer) Logger {
	return &defaultLogger{
		level:  level,
		logger: log.New(output, "", 0), // 自定义行格式，不用标准库前缀
	}
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	if l.level <= DEBUG {
		l.log(DEBUG, format, args...)
	}
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	if l.level <= INFO {
		l.log(INFO, format, args...)
	}
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	if l.level <= WARN {
		l.log(WARN, format, args...)
	}
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	if l.level <= ERROR {
		l.log(ERROR, format, args...)
	}
}

func (l *defaultLogger) SetLevel(level Level) {
	l.level = level
}

func (l *defaultLogger) log(level Level, format string, args ...interface{}) {
	if l.level == OFF {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	l.logger.Println(fmt.Sprintf("[%s] [%s] %s", timestamp, level.String(), message))
}

// discardLogger 丢弃全部日志输出
type discardLogger struct{}

// NewDiscardLogger creates a logger that drops everything. Useful in tests
// and when embedding setagg where log output is unwanted.
func NewDiscardLogger() Logger {
	return &discardLogger{}
}

func (d *discardLogger) Debug(format string, args ...interface{}) {}
func (d *discardLogger) Info(format string, args ...interface{})  {}
func (d *discardLogger) Warn(format string, args ...interface{})  {}
func (d *discardLogger) Error(format string, args ...interface{}) {}
func (d *discardLogger) SetLevel(level Level)                     {}

// 全局默认日志器
var defaultInstance Logger = NewLogger(INFO, os.Stdout)

// SetDefault 替换全局默认日志器
func SetDefault(logger Logger) {
	defaultInstance = logger
}

// GetDefault 返回全局默认日志器
func GetDefault() Logger {
	return defaultInstance
}

// Debug logs through the default logger.
func Debug(format string, args ...interface{}) {
	defaultInstance.Debug(format, args...)
}

// Info logs through the default logger.
func Info(format string, args ...interface{}) {
	defaultInstance.Info(format, args...)
}

// Warn logs through the default logger.
func Warn(format string, args ...interface{}) {
	defaultInstance.Warn(format, args...)
}

// Error logs through the default logger.
func Error(format string, args ...interface{}) {
	defaultInstance.Error(format, args...)
}
