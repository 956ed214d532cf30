// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package turnflow

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "turnflow.v1.TurnFlow"

	TurnFlow_Publish_FullMethodName       = "/turnflow.v1.TurnFlow/Publish"
	TurnFlow_Perform_FullMethodName       = "/turnflow.v1.TurnFlow/Perform"
	TurnFlow_Acknowledge_FullMethodName   = "/turnflow.v1.TurnFlow/Acknowledge"
	TurnFlow_Presentations_FullMethodName = "/turnflow.v1.TurnFlow/Presentations"
)

// TurnFlowClient is the client API for the TurnFlow service. Payloads are
// JSON documents carried as google.protobuf.Struct.
type TurnFlowClient interface {
	Publish(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Perform(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Acknowledge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Presentations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (TurnFlow_PresentationsClient, error)
}

type turnFlowClient struct {
	cc grpc.ClientConnInterface
}

func NewTurnFlowClient(cc grpc.ClientConnInterface) TurnFlowClient {
	return &turnFlowClient{cc}
}

func (c *turnFlowClient) Publish(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, TurnFlow_Publish_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *turnFlowClient) Perform(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, TurnFlow_Perform_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *turnFlowClient) Acknowledge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, TurnFlow_Acknowledge_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *turnFlowClient) Presentations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (TurnFlow_PresentationsClient, error) {
	stream, err := c.cc.NewStream(ctx, &TurnFlow_ServiceDesc.Streams[0], TurnFlow_Presentations_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &turnFlowPresentationsClient{stream}
	if err = x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err = x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

type TurnFlow_PresentationsClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type turnFlowPresentationsClient struct {
	grpc.ClientStream
}

func (x *turnFlowPresentationsClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}

	return m, nil
}

// TurnFlowServer is the server API for the TurnFlow service
type TurnFlowServer interface {
	Publish(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Perform(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Acknowledge(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Presentations(*emptypb.Empty, TurnFlow_PresentationsServer) error
	mustEmbedUnimplementedTurnFlowServer()
}

// UnimplementedTurnFlowServer must be embedded to have forward compatible implementations
type UnimplementedTurnFlowServer struct{}

func (UnimplementedTurnFlowServer) Publish(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Publish not implemented")
}

func (UnimplementedTurnFlowServer) Perform(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Perform not implemented")
}

func (UnimplementedTurnFlowServer) Acknowledge(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Acknowledge not implemented")
}

func (UnimplementedTurnFlowServer) Presentations(*emptypb.Empty, TurnFlow_PresentationsServer) error {
	return status.Errorf(codes.Unimplemented, "method Presentations not implemented")
}

func (UnimplementedTurnFlowServer) mustEmbedUnimplementedTurnFlowServer() {}

func RegisterTurnFlowServer(s grpc.ServiceRegistrar, srv TurnFlowServer) {
	s.RegisterService(&TurnFlow_ServiceDesc, srv)
}

func unaryHandler(method string, call func(TurnFlowServer, context.Context, *structpb.Struct) (*emptypb.Empty, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TurnFlowServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TurnFlowServer), ctx, req.(*structpb.Struct))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func presentationsHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}

	return srv.(TurnFlowServer).Presentations(m, &turnFlowPresentationsServer{stream})
}

type TurnFlow_PresentationsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type turnFlowPresentationsServer struct {
	grpc.ServerStream
}

func (x *turnFlowPresentationsServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// TurnFlow_ServiceDesc is declared by hand after turnflow.proto; the messages
// are well known types so no generated file descriptor is needed.
var TurnFlow_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TurnFlowServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Publish",
			Handler:    unaryHandler(TurnFlow_Publish_FullMethodName, TurnFlowServer.Publish),
		},
		{
			MethodName: "Perform",
			Handler:    unaryHandler(TurnFlow_Perform_FullMethodName, TurnFlowServer.Perform),
		},
		{
			MethodName: "Acknowledge",
			Handler:    unaryHandler(TurnFlow_Acknowledge_FullMethodName, TurnFlowServer.Acknowledge),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Presentations",
			Handler:       presentationsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "turnflow.proto",
}
