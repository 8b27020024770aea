package catalog

import "github.com/rulego/setagg/types"

// Principal 执行定义请求的会话主体。显式传入而不是从环境读取，
// 这样同一个目录可以服务多个调用方。
type Principal struct {
	Name      string
	Superuser bool
}

// AccessController 权限回调。聚合定义流程里需要的三种检查：
// 类型使用、函数执行、在命名空间中创建对象。
type AccessController interface {
	CanUseType(p Principal, typ types.ID) bool
	CanExecute(p Principal, fn OID) bool
	CanCreateIn(p Principal, namespace string) bool
}

// AllowAll grants every permission to every principal.
type AllowAll struct{}

func (AllowAll) CanUseType(Principal, types.ID) bool { return true }

func (AllowAll) CanExecute(Principal, OID) bool { return true }

func (AllowAll) CanCreateIn(Principal, string) bool { return true }

// DenyList 黑名单式控制器：默认放行，命中名单则拒绝。超级用户不受限。
type DenyList struct {
	Types      map[types.ID]bool
	Functions  map[OID]bool
	Namespaces map[string]bool
}

func (d *DenyList) CanUseType(p Principal, typ types.ID) bool {
	if p.Superuser {
		return true
	}
	return !d.Types[typ]
}

func (d *DenyList) CanExecute(p Principal, fn OID) bool {
	if p.Superuser {
		return true
	}
	return !d.Functions[fn]
}

func (d *DenyList) CanCreateIn(p Principal, namespace string) bool {
	if p.Superuser {
		return true
	}
	return !d.Namespaces[namespace]
}
