package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrgChartGrpcHandler は OrgChartService の gRPC 実装です。
type OrgChartGrpcHandler struct {
	svc orgchart.UseCase
}

var _ OrgChartServer = (*OrgChartGrpcHandler)(nil)

// NewOrgChartGrpcHandler は OrgChartGrpcHandler を生成します。
func NewOrgChartGrpcHandler(svc orgchart.UseCase) *OrgChartGrpcHandler {
	return &OrgChartGrpcHandler{svc: svc}
}

type addEmployeeRequest struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Image    string `json:"image"`
}

type updateEmployeeRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Role  *string `json:"role"`
	Image *string `json:"image"`
}

type deleteEmployeesRequest struct {
	IDs []string `json:"ids"`
}

// ListEmployees は現在のフォレストを { "employees": [...] } で返します。
func (h *OrgChartGrpcHandler) ListEmployees(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	forest, err := h.svc.Current(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	doc, err := orgchart.EncodeDocument(forest)
	if err != nil {
		return nil, toStatusError(err)
	}
	return jsonToStruct(doc)
}

// AddEmployee は社員を追加します。
func (h *OrgChartGrpcHandler) AddEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in addEmployeeRequest
	if err := structToJSON(req, &in); err != nil {
		return nil, err
	}

	m, err := h.svc.AddEmployee(ctx, orgchart.AddEmployeeInput{
		ID:       in.ID,
		ParentID: in.ParentID,
		Name:     in.Name,
		Role:     in.Role,
		Image:    in.Image,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return mutationToStruct(m)
}

// UpdateEmployee は指定されたフィールドのみ更新します。
func (h *OrgChartGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in updateEmployeeRequest
	if err := structToJSON(req, &in); err != nil {
		return nil, err
	}

	m, err := h.svc.UpdateEmployee(ctx, orgchart.EmployeePatch{
		ID:    in.ID,
		Name:  in.Name,
		Role:  in.Role,
		Image: in.Image,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return mutationToStruct(m)
}

// DeleteEmployees は ids の社員を部分木ごと削除します。
func (h *OrgChartGrpcHandler) DeleteEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in deleteEmployeesRequest
	if err := structToJSON(req, &in); err != nil {
		return nil, err
	}

	m, err := h.svc.DeleteEmployees(ctx, in.IDs)
	if err != nil {
		return nil, toStatusError(err)
	}
	return mutationToStruct(m)
}

func structToJSON(req *structpb.Struct, dst any) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	b, err := protojson.Marshal(req)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("invalid request: %v", err))
	}
	return nil
}

func jsonToStruct(b []byte) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func mutationToStruct(m *orgchart.Mutation) (*structpb.Struct, error) {
	employees, err := orgchart.EncodeEmployees(m.Forest)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	body := map[string]any{
		"id":        m.ID,
		"kind":      string(m.Kind),
		"status":    string(m.Status),
		"removed":   m.Removed,
		"employees": json.RawMessage(employees),
	}
	if !m.StartedAt.IsZero() {
		body["started_at"] = m.StartedAt.Format(time.RFC3339Nano)
	}
	if !m.FinishedAt.IsZero() {
		body["finished_at"] = m.FinishedAt.Format(time.RFC3339Nano)
	}
	if m.Employee != nil {
		b, err := orgchart.EncodeEmployee(*m.Employee)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		body["employee"] = json.RawMessage(b)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return jsonToStruct(b)
}
