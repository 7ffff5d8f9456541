package def

import (
	"errors"
)

// 定义系统错误

var (
	ErrReleaseWithoutOwner            = errors.New("release object without pool tag")          // 释放的对象不是从对象池中获取的
	ErrDuplicatePrototypeRegistration = errors.New("prototype already registered")             // 原型已经注册过对象池
	ErrMissingPrototype               = errors.New("pool conf has no prototype")               // 对象池配置缺少原型
	ErrPrototypeNotComparable         = errors.New("prototype must be a comparable type")      // 原型不能作为map key
	ErrPrototypeNotFound              = errors.New("prototype not found in catalog")           // 配置中的原型不存在
	ErrForeignInstance                = errors.New("object is owned by another pool")          // 对象不属于该对象池
	ErrInstanceNotInUse               = errors.New("object is not in the in-use set")          // 对象不在使用列表中
	ErrInstanceTypeMismatch           = errors.New("object does not match the requested type") // 对象类型不匹配
	ErrCloneFailed                    = errors.New("prototype clone returned nil")             // 原型克隆失败
	ErrInvalidPoolConf                = errors.New("invalid pool conf")                        // 对象池配置错误
	ErrSchedulerRequired              = errors.New("registry requires a scheduler")            // 缺少定时调度器
	ErrDispatcherClosed               = errors.New("dispatcher closed")                        // 调度器已关闭
	ErrInvalidCronSpec                = errors.New("invalid cron spec")                        // cron表达式错误
	ErrRotationTime                   = errors.New("rotation time must be between 1m and 24h") // 日志切割时间错误
)
