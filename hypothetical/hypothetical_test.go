package hypothetical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/tuplesort"
	"github.com/rulego/setagg/types"
)

// newRankContext 构造一个 (int4, bool) 形状的排序上下文并填入分组行。
func newRankContext(t *testing.T, values ...interface{}) *tuplesort.Context {
	t.Helper()
	shape := dataset.NewShape(
		dataset.Column{Name: "v", Type: types.Int4},
		dataset.Column{Name: "flag", Type: types.Bool},
	)
	sc, err := tuplesort.New(types.Default(), shape, []tuplesort.SortKey{{Column: 0}})
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, sc.Push(dataset.NewRow(v, false)))
	}
	return sc
}

func int4Args(v interface{}) ([]types.ID, []dataset.Datum) {
	return []types.ID{types.Int4}, []dataset.Datum{dataset.NewDatum(v)}
}

func TestRankFamily(t *testing.T) {
	t.Run("rank without duplicates", func(t *testing.T) {
		// 分组 [1,2,4,5]，探测值 3：排序后 [1,2,3*,4,5]
		sc := newRankContext(t, 1, 2, 4, 5)
		argTypes, args := int4Args(3)

		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), rank)

		pct, err := PercentRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.InDelta(t, 0.5, pct, 1e-10)

		cume, err := CumeDist(sc, argTypes, args)
		assert.NoError(t, err)
		assert.InDelta(t, 0.6, cume, 1e-10)

		dense, err := DenseRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), dense)
	})

	t.Run("dense rank collapses duplicates", func(t *testing.T) {
		// 分组 [1,2,2,4]，探测值 3：排序后 [1,2,2,3*,4]
		sc := newRankContext(t, 1, 2, 2, 4)
		argTypes, args := int4Args(3)

		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), rank)

		dense, err := DenseRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), dense)

		pct, err := PercentRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.InDelta(t, 0.75, pct, 1e-10)

		cume, err := CumeDist(sc, argTypes, args)
		assert.NoError(t, err)
		assert.InDelta(t, 0.8, cume, 1e-10)
	})

	t.Run("probe equal to existing rows ranks after them", func(t *testing.T) {
		// 稳定排序保留插入顺序，探测行最后入队，因此排在同值行之后。
		sc := newRankContext(t, 1, 2, 2, 4)
		argTypes, args := int4Args(2)

		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), rank)

		dense, err := DenseRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), dense)
	})

	t.Run("empty group", func(t *testing.T) {
		sc := newRankContext(t)
		argTypes, args := int4Args(42)

		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rank)

		// 空分组的分母退化为 0，约定返回 0 而不是除零。
		pct, err := PercentRank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, float64(0), pct)

		cume, err := CumeDist(sc, argTypes, args)
		assert.NoError(t, err)
		assert.InDelta(t, 1.0, cume, 1e-10)
	})

	t.Run("null probe sorts last", func(t *testing.T) {
		sc := newRankContext(t, 1, 2, 3)
		argTypes, args := int4Args(nil)

		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), rank)
	})

	t.Run("descending order", func(t *testing.T) {
		shape := dataset.NewShape(
			dataset.Column{Name: "v", Type: types.Int4},
			dataset.Column{Name: "flag", Type: types.Bool},
		)
		sc, err := tuplesort.New(types.Default(), shape, []tuplesort.SortKey{{Column: 0, Desc: true}})
		require.NoError(t, err)
		for _, v := range []int{1, 2, 4, 5} {
			require.NoError(t, sc.Push(dataset.NewRow(v, false)))
		}
		argTypes, args := int4Args(3)

		// 降序 [5,4,3*,2,1]
		rank, err := Rank(sc, argTypes, args)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), rank)
	})
}

func TestRankContextReusable(t *testing.T) {
	sc := newRankContext(t, 1, 2, 4, 5)
	argTypes, args := int4Args(3)

	rank, err := Rank(sc, argTypes, args)
	require.NoError(t, err)
	require.Equal(t, int64(3), rank)
	assert.Equal(t, 4, sc.Len())

	// 同一上下文可用不同探测值反复求值
	argTypes, args = int4Args(0)
	rank, err = Rank(sc, argTypes, args)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)
	assert.Equal(t, 4, sc.Len())

	argTypes, args = int4Args(9)
	rank, err = Rank(sc, argTypes, args)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rank)
	assert.Equal(t, 4, sc.Len())
}

func TestDenseRankMultiColumn(t *testing.T) {
	shape := dataset.NewShape(
		dataset.Column{Name: "a", Type: types.Int4},
		dataset.Column{Name: "b", Type: types.Text},
		dataset.Column{Name: "flag", Type: types.Bool},
	)
	sc, err := tuplesort.New(types.Default(), shape, []tuplesort.SortKey{{Column: 0}, {Column: 1}})
	require.NoError(t, err)
	require.NoError(t, sc.Push(dataset.NewRow(1, "x", false)))
	require.NoError(t, sc.Push(dataset.NewRow(1, "x", false)))
	require.NoError(t, sc.Push(dataset.NewRow(2, "y", false)))

	argTypes := []types.ID{types.Int4, types.Text}
	args := []dataset.Datum{dataset.NewDatum(2), dataset.NewDatum("a")}

	// 排序后 (1,x),(1,x),(2,a*),(2,y)：重复对 (1,x)==(1,x) 折叠一档
	rank, err := Rank(sc, argTypes, args)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	dense, err := DenseRank(sc, argTypes, args)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dense)
}

func TestShapeMismatch(t *testing.T) {
	t.Run("argument count", func(t *testing.T) {
		sc := newRankContext(t, 1, 2)
		argTypes := []types.ID{types.Int4, types.Int4}
		args := []dataset.Datum{dataset.NewDatum(1), dataset.NewDatum(2)}

		_, err := Rank(sc, argTypes, args)
		require.Error(t, err)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, -1, ee.Column)
		// 失败的调用不得污染共享上下文
		assert.Equal(t, 2, sc.Len())
	})

	t.Run("trailing column not boolean", func(t *testing.T) {
		shape := dataset.NewShape(
			dataset.Column{Name: "v", Type: types.Int4},
			dataset.Column{Name: "flag", Type: types.Int4},
		)
		sc, err := tuplesort.New(types.Default(), shape, []tuplesort.SortKey{{Column: 0}})
		require.NoError(t, err)

		argTypes, args := int4Args(1)
		_, err = Rank(sc, argTypes, args)
		require.Error(t, err)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, 1, ee.Column)
		assert.Equal(t, types.Bool, ee.Want)
		assert.Equal(t, types.Int4, ee.Got)
	})

	t.Run("argument type", func(t *testing.T) {
		sc := newRankContext(t, 1, 2)
		argTypes := []types.ID{types.Text}
		args := []dataset.Datum{dataset.NewDatum("x")}

		_, err := Rank(sc, argTypes, args)
		require.Error(t, err)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, 0, ee.Column)
		assert.Equal(t, types.Int4, ee.Want)
		assert.Equal(t, types.Text, ee.Got)
		assert.Equal(t, 2, sc.Len())
	})

	t.Run("type list shorter than arguments", func(t *testing.T) {
		sc := newRankContext(t, 1)
		args := []dataset.Datum{dataset.NewDatum(1)}

		_, err := Rank(sc, nil, args)
		require.Error(t, err)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, -1, ee.Column)
	})
}

func TestEvaluationErrorMessage(t *testing.T) {
	err := &EvaluationError{
		Function: "rank",
		Message:  "argument type does not match its sort column",
		Column:   0,
		Want:     types.Int4,
		Got:      types.Text,
	}
	msg := err.Error()
	assert.Contains(t, msg, "SHAPE_MISMATCH")
	assert.Contains(t, msg, "type mismatch in rank()")
	assert.Contains(t, msg, "column 1")
}
