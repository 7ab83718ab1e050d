package model

import (
	"context"
	"fmt"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
)

// ServiceScorer 把 core.MLService（如 TF Serving）适配为 Scorer。
type ServiceScorer struct {
	Service       core.MLService
	ModelName     string
	ModelVersion  string
	SignatureName string
}

func NewServiceScorer(svc core.MLService, modelName string) *ServiceScorer {
	return &ServiceScorer{Service: svc, ModelName: modelName}
}

func (s *ServiceScorer) Name() string {
	if s.ModelName == "" {
		return "model.service"
	}
	return "model.service." + s.ModelName
}

func (s *ServiceScorer) Score(ctx context.Context, b *batch.Batch) ([]float64, error) {
	if b.Len() == 0 {
		return []float64{}, nil
	}
	resp, err := s.Service.Predict(ctx, &core.MLPredictRequest{
		Inputs:        b.Tensors().Inputs(),
		ModelName:     s.ModelName,
		ModelVersion:  s.ModelVersion,
		SignatureName: s.SignatureName,
	})
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if err := CheckCount(b, resp.Predictions); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// Health 检查模型服务是否可用
func (s *ServiceScorer) Health(ctx context.Context) error {
	return s.Service.Health(ctx)
}
