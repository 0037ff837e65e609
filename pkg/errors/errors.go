package errors

import "errors"

// ErrOptimisticLock 并发冲突：记录已被其他操作修改
// 学时记入的条件更新未命中时，并发评价的落败方收到此错误
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
