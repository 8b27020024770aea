package aggdef

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

func newAccumulator(t *testing.T, d *Definer, def *Definition) *Accumulator {
	t.Helper()
	desc, err := d.Validate(user(), def)
	require.NoError(t, err)
	acc, err := NewAccumulator(d.Catalog().Registry(), desc)
	require.NoError(t, err)
	return acc
}

func TestAccumulatorSum(t *testing.T) {
	d := newTestDefiner(t)
	acc := newAccumulator(t, d, sumInt8Def())

	// 严格转移函数无初始值：第一行直接充当转移值
	require.NoError(t, acc.Add(dataset.NewDatum(int64(5))))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(7))))
	require.NoError(t, acc.Add(dataset.Null()))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(8))))

	got, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Value)

	// Result 不消耗状态
	again, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(20), again.Value)
}

func TestAccumulatorEmptyGroup(t *testing.T) {
	d := newTestDefiner(t)
	acc := newAccumulator(t, d, sumInt8Def())

	got, err := acc.Result()
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestAccumulatorAllNullInput(t *testing.T) {
	d := newTestDefiner(t)
	acc := newAccumulator(t, d, sumInt8Def())

	require.NoError(t, acc.Add(dataset.Null()))
	require.NoError(t, acc.Add(dataset.Null()))

	got, err := acc.Result()
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestAccumulatorCountStar(t *testing.T) {
	d := newTestDefiner(t)
	def := &Definition{
		Name:       "countstar",
		DirectArgs: -1,
		TransFunc:  "int8inc",
		TransType:  types.Int8,
		InitValue:  strptr("0"),
	}
	acc := newAccumulator(t, d, def)

	for i := 0; i < 3; i++ {
		require.NoError(t, acc.Add())
	}
	got, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Value)

	require.NoError(t, acc.Reset())
	got, err = acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Value)
}

func TestAccumulatorCountIgnoresNulls(t *testing.T) {
	d := newTestDefiner(t)
	def := &Definition{
		Name:       "count",
		Args:       []Arg{{Name: "x", Type: types.Any}},
		DirectArgs: -1,
		TransFunc:  "int8inc_any",
		TransType:  types.Int8,
		InitValue:  strptr("0"),
	}
	acc := newAccumulator(t, d, def)

	require.NoError(t, acc.Add(dataset.NewDatum("a")))
	require.NoError(t, acc.Add(dataset.Null()))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(1))))

	got, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Value)
}

func TestAccumulatorFinalFunction(t *testing.T) {
	d := newTestDefiner(t)
	def := sumInt8Def()
	def.FinalFunc = "int8_to_float8"
	acc := newAccumulator(t, d, def)

	require.NoError(t, acc.Add(dataset.NewDatum(int64(3))))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(4))))

	got, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, float64(7), got.Value)
}

func TestAccumulatorInitValueReinterpreted(t *testing.T) {
	// "now" 这类非确定性初始值在每次 Reset 时重新解释
	d := newTestDefiner(t)
	def := &Definition{
		Name:       "latest",
		Args:       []Arg{{Name: "ts", Type: types.Timestamp}},
		DirectArgs: -1,
		TransFunc:  "ts_latest",
		TransType:  types.Timestamp,
		InitValue:  strptr("now"),
	}
	acc := newAccumulator(t, d, def)

	got, err := acc.Result()
	require.NoError(t, err)
	ts, ok := got.Value.(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), ts, 5*time.Second)
}

func TestAccumulatorArityCheck(t *testing.T) {
	d := newTestDefiner(t)
	acc := newAccumulator(t, d, sumInt8Def())
	assert.Error(t, acc.Add())
	assert.Error(t, acc.Add(dataset.Null(), dataset.Null()))
}

func TestAccumulatorRejectsOrderedSet(t *testing.T) {
	d := newTestDefiner(t)
	desc, err := d.Validate(user(), osTextDef())
	require.NoError(t, err)

	_, err = NewAccumulator(d.Catalog().Registry(), desc)
	assert.Error(t, err)
}

func TestAccumulatorExprBody(t *testing.T) {
	// 表达式体的转移函数走编译好的 expr 程序
	d := newTestDefiner(t)
	def := &Definition{
		Name:       "max4",
		Args:       []Arg{{Name: "x", Type: types.Int4}},
		DirectArgs: -1,
		TransFunc:  "int4larger",
		TransType:  types.Int4,
	}
	acc := newAccumulator(t, d, def)

	require.NoError(t, acc.Add(dataset.NewDatum(int64(3))))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(9))))
	require.NoError(t, acc.Add(dataset.NewDatum(int64(4))))

	got, err := acc.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Value)
}
