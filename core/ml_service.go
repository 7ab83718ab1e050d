package core

import "context"

// MLService 是机器学习服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 使用场景：
//   - 序列推荐模型（SLi-Rec 等）托管在外部模型服务中，按批次打分
//
// 实现：
//   - service.TFServingClient 实现此接口
//   - model.ServiceScorer 把 MLService 适配为 model.Scorer
type MLService interface {
	// Predict 批量预测
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close(ctx context.Context) error
}

// MLPredictRequest 预测请求
type MLPredictRequest struct {
	// Inputs 列式输入张量，key 为模型输入名，value 为整批数据
	// 格式：{"users": [1, 2], "item_history": [[3, 4], [3, 4]], ...}
	Inputs map[string]any

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// SignatureName 签名名称（可选，TF Serving 使用）
	SignatureName string
}

// MLPredictResponse 预测响应
type MLPredictResponse struct {
	// Predictions 预测结果列表（与请求中的样本一一对应）
	Predictions []float64

	// ModelVersion 模型版本（如果服务返回）
	ModelVersion string
}
