package catalog

import "errors"

// 目录各能力返回的哨兵错误。定义层据此映射到自己的错误码。
var (
	// ErrNotFound 按名称+签名找不到唯一匹配的函数/操作符/聚合行。
	ErrNotFound = errors.New("catalog object not found")
	// ErrAmbiguous 多个候选都能匹配调用签名。
	ErrAmbiguous = errors.New("catalog lookup is ambiguous")
	// ErrReturnsSet 匹配到的函数返回集合。
	ErrReturnsSet = errors.New("function returns a set")
	// ErrRuntimeCoercion 某个参数位置需要运行时类型转换。
	ErrRuntimeCoercion = errors.New("argument requires run-time type coercion")
	// ErrDuplicate 唯一性冲突（同名同签名对象已存在）。
	ErrDuplicate = errors.New("catalog object already exists")
	// ErrPermission 主体没有所需权限。
	ErrPermission = errors.New("permission denied")
)
