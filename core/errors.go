package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）与 errors.Is（按 Module + Code 匹配）
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Feature 错误：历史为空、历史序列长度不一致
//   - Scorer 错误：分数数量与候选数量不一致、模型服务不可用
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "scorer"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 使 errors.Is 可以按 Module + Code 匹配哨兵错误，
// 即使错误是通过 fmt.Errorf("...: %w") 包装后的副本。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code && e.Message == t.Message
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleVocab    = "vocab"    // 词表模块
	ModuleCatalog  = "catalog"  // 商品目录模块
	ModuleFeature  = "feature"  // 特征模块
	ModuleScorer   = "scorer"   // 打分模块
	ModuleHistory  = "history"  // 用户历史模块
	ModuleService  = "service"  // 模型服务模块
	ModulePipeline = "pipeline" // 推理链路
)

// 推理链路的哨兵错误
var (
	// ErrEmptyHistory 表示请求的历史序列为空，时间特征无法定义
	ErrEmptyHistory = NewDomainError(ModuleFeature, ErrorCodeInvalidInput, "feature: history is empty")

	// ErrHistoryShape 表示历史物品、历史类目、历史时间戳三个序列长度不一致
	ErrHistoryShape = NewDomainError(ModuleFeature, ErrorCodeInvalidInput, "feature: history sequences differ in length")

	// ErrScoreCountMismatch 表示模型返回的分数数量与批次内候选数量不一致（致命的集成错误）
	ErrScoreCountMismatch = NewDomainError(ModuleScorer, ErrorCodeInternalError, "scorer: score count does not match batch size")

	// ErrNonFiniteScore 表示模型返回了 NaN 或 ±Inf 分数（集成错误，无法排序也无法序列化）
	ErrNonFiniteScore = NewDomainError(ModuleScorer, ErrorCodeInternalError, "scorer: score is not a finite number")

	// ErrScorerUnavailable 表示模型服务不可用（例如熔断器打开）
	ErrScorerUnavailable = NewDomainError(ModuleScorer, ErrorCodeUnavailable, "scorer: unavailable")
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT（请求参数问题，调用方可修正）
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
