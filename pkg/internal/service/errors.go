package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 请求数据校验失败.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 业务资源不存在（区别于存储层的对象缺失）.
	ErrNotFound = errors.New("resource not found")
)

// validationErr 构造带说明的校验错误，handler 层通过 errors.Is(err, ErrValidation) 映射为 400.
func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFoundErr 构造带说明的未找到错误，handler 层映射为 404.
func notFoundErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
