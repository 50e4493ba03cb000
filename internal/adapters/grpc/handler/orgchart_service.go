package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrgChartServiceName は組織図サービスの完全修飾名です。
const OrgChartServiceName = "orgchart.v1.OrgChartService"

// OrgChartServer は OrgChartService のサーバー側インターフェースです。
// メッセージは Well-Known Types の Struct で JSON ドキュメントと同じ形を運びます。
type OrgChartServer interface {
	ListEmployees(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AddEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// OrgChartServiceDesc は OrgChartService の登録情報です。
var OrgChartServiceDesc = grpc.ServiceDesc{
	ServiceName: OrgChartServiceName,
	HandlerType: (*OrgChartServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListEmployees",
			Handler: unaryHandler("ListEmployees", func() *emptypb.Empty { return new(emptypb.Empty) },
				func(s OrgChartServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.ListEmployees(ctx, in)
				}),
		},
		{
			MethodName: "AddEmployee",
			Handler: unaryHandler("AddEmployee", newStruct,
				func(s OrgChartServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.AddEmployee(ctx, in)
				}),
		},
		{
			MethodName: "UpdateEmployee",
			Handler: unaryHandler("UpdateEmployee", newStruct,
				func(s OrgChartServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.UpdateEmployee(ctx, in)
				}),
		},
		{
			MethodName: "DeleteEmployees",
			Handler: unaryHandler("DeleteEmployees", newStruct,
				func(s OrgChartServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.DeleteEmployees(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orgchart/v1/orgchart.proto",
}

// RegisterOrgChartServer は srv を OrgChartService として登録します。
func RegisterOrgChartServer(s grpc.ServiceRegistrar, srv OrgChartServer) {
	s.RegisterService(&OrgChartServiceDesc, srv)
}

func newStruct() *structpb.Struct {
	return new(structpb.Struct)
}

func unaryHandler[T proto.Message](method string, newReq func() T, call func(OrgChartServer, context.Context, T) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + OrgChartServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrgChartServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrgChartServer), ctx, req.(T))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// OrgChartClient は OrgChartService のクライアントです。
type OrgChartClient struct {
	cc grpc.ClientConnInterface
}

// NewOrgChartClient は OrgChartClient を生成します。
func NewOrgChartClient(cc grpc.ClientConnInterface) *OrgChartClient {
	return &OrgChartClient{cc: cc}
}

func (c *OrgChartClient) ListEmployees(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListEmployees", in, opts)
}

func (c *OrgChartClient) AddEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "AddEmployee", in, opts)
}

func (c *OrgChartClient) UpdateEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateEmployee", in, opts)
}

func (c *OrgChartClient) DeleteEmployees(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteEmployees", in, opts)
}

func (c *OrgChartClient) invoke(ctx context.Context, method string, in proto.Message, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+OrgChartServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
