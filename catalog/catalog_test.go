package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

func TestCreateFunction(t *testing.T) {
	cat := New(types.NewRegistry(), nil)

	id, err := cat.CreateFunction(&FunctionEntry{
		Name: "MyFunc", Namespace: "public",
		ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int8, Expr: "args[0]",
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, uint32(id), uint32(1000))

	// 名称注册时折小写
	fn, ok := cat.Function(id)
	require.True(t, ok)
	assert.Equal(t, "myfunc", fn.Name)

	t.Run("duplicate signature", func(t *testing.T) {
		_, err := cat.CreateFunction(&FunctionEntry{
			Name: "myfunc", Namespace: "public",
			ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int4, Expr: "args[0]",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("overload allowed", func(t *testing.T) {
		_, err := cat.CreateFunction(&FunctionEntry{
			Name: "myfunc", Namespace: "public",
			ArgTypes: []types.ID{types.Text}, ReturnType: types.Text, Expr: "args[0]",
		})
		assert.NoError(t, err)
	})

	t.Run("same signature in another namespace", func(t *testing.T) {
		_, err := cat.CreateFunction(&FunctionEntry{
			Name: "myfunc", Namespace: "stats",
			ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int8, Expr: "args[0]",
		})
		assert.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := cat.CreateFunction(&FunctionEntry{ArgTypes: nil, ReturnType: types.Int8})
		assert.ErrorContains(t, err, "name must not be empty")
	})
}

func TestDropFunction(t *testing.T) {
	cat := New(types.NewRegistry(), nil)
	id, err := cat.CreateFunction(&FunctionEntry{
		Name: "f", Namespace: "public",
		ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int8, Expr: "args[0]",
	})
	require.NoError(t, err)

	cat.DropFunction(id)
	_, ok := cat.Function(id)
	assert.False(t, ok)
	_, err = cat.ResolveFunction(Principal{Name: "x"}, "f", []types.ID{types.Int8})
	assert.ErrorIs(t, err, ErrNotFound)

	// 再删不报错，签名也已释放
	cat.DropFunction(id)
	_, err = cat.CreateFunction(&FunctionEntry{
		Name: "f", Namespace: "public",
		ArgTypes: []types.ID{types.Int8}, ReturnType: types.Int8, Expr: "args[0]",
	})
	assert.NoError(t, err)
}

func TestCreateOperator(t *testing.T) {
	cat := New(types.NewRegistry(), nil)
	id, err := cat.CreateOperator(&OperatorEntry{Name: "<", Left: types.Int8, Right: types.Int8})
	require.NoError(t, err)

	op, ok := cat.Operator(id)
	require.True(t, ok)
	assert.Equal(t, "<", op.Name)

	_, err = cat.CreateOperator(&OperatorEntry{Name: "<", Left: types.Int8, Right: types.Int8})
	assert.ErrorIs(t, err, ErrDuplicate)

	// 操作数类型不同即是另一个操作符
	_, err = cat.CreateOperator(&OperatorEntry{Name: "<", Left: types.Text, Right: types.Text})
	assert.NoError(t, err)
	_, err = cat.CreateOperator(&OperatorEntry{Name: "", Left: types.Int8, Right: types.Int8})
	assert.ErrorContains(t, err, "name must not be empty")
}

func TestNextOID(t *testing.T) {
	cat := New(types.NewRegistry(), nil)
	a := cat.NextOID()
	b := cat.NextOID()
	assert.Greater(t, b, a)

	// 手工取号与注册取号共享同一序列
	id, err := cat.CreateFunction(&FunctionEntry{
		Name: "f", Namespace: "public",
		ArgTypes: nil, ReturnType: types.Int8,
		Native: func(*CallContext, []dataset.Datum) (dataset.Datum, error) {
			return dataset.Null(), nil
		},
	})
	require.NoError(t, err)
	assert.Greater(t, id, b)
}

func TestAccessControllers(t *testing.T) {
	alice := Principal{Name: "alice"}
	root := Principal{Name: "postgres", Superuser: true}

	t.Run("allow all", func(t *testing.T) {
		var a AllowAll
		assert.True(t, a.CanUseType(alice, types.Internal))
		assert.True(t, a.CanExecute(alice, 1))
		assert.True(t, a.CanCreateIn(alice, "secret"))
	})

	t.Run("deny list", func(t *testing.T) {
		d := &DenyList{
			Types:      map[types.ID]bool{types.Bytea: true},
			Functions:  map[OID]bool{42: true},
			Namespaces: map[string]bool{"secret": true},
		}
		assert.False(t, d.CanUseType(alice, types.Bytea))
		assert.True(t, d.CanUseType(alice, types.Int8))
		assert.False(t, d.CanExecute(alice, 42))
		assert.True(t, d.CanExecute(alice, 43))
		assert.False(t, d.CanCreateIn(alice, "secret"))
		assert.True(t, d.CanCreateIn(alice, "public"))

		// 超级用户不受黑名单限制
		assert.True(t, d.CanUseType(root, types.Bytea))
		assert.True(t, d.CanExecute(root, 42))
		assert.True(t, d.CanCreateIn(root, "secret"))
	})

	t.Run("deny list with nil maps", func(t *testing.T) {
		d := &DenyList{}
		assert.True(t, d.CanUseType(alice, types.Int8))
		assert.True(t, d.CanExecute(alice, 1))
		assert.True(t, d.CanCreateIn(alice, "public"))
	})
}
