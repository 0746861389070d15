package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "guftagu.v1.ConversationService"

// Method names of ConversationService.
const (
	MethodGetStatus         = "GetStatus"
	MethodListChats         = "ListChats"
	MethodListMessages      = "ListMessages"
	MethodSelectChat        = "SelectChat"
	MethodSendMessage       = "SendMessage"
	MethodSearchMessages    = "SearchMessages"
	MethodInbound           = "Inbound"
	MethodTyping            = "Typing"
	MethodReceipt           = "Receipt"
	MethodListNotifications = "ListNotifications"
	MethodMarkAllRead       = "MarkAllRead"
	MethodStartCall         = "StartCall"
	MethodEndCall           = "EndCall"
	MethodWatchEvents       = "WatchEvents"
)

// conversationServer is the handler type checked by grpc.RegisterService.
type conversationServer interface {
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchEvents(*structpb.Struct, grpc.ServerStream) error
}

type unaryFunc func(*Service, context.Context, *structpb.Struct) (*structpb.Struct, error)

var unaryMethods = []struct {
	name string
	fn   unaryFunc
}{
	{MethodGetStatus, (*Service).GetStatus},
	{MethodListChats, (*Service).ListChats},
	{MethodListMessages, (*Service).ListMessages},
	{MethodSelectChat, (*Service).SelectChat},
	{MethodSendMessage, (*Service).SendMessage},
	{MethodSearchMessages, (*Service).SearchMessages},
	{MethodInbound, (*Service).Inbound},
	{MethodTyping, (*Service).Typing},
	{MethodReceipt, (*Service).Receipt},
	{MethodListNotifications, (*Service).ListNotifications},
	{MethodMarkAllRead, (*Service).MarkAllRead},
	{MethodStartCall, (*Service).StartCall},
	{MethodEndCall, (*Service).EndCall},
}

var watchStream = grpc.StreamDesc{
	StreamName:    MethodWatchEvents,
	ServerStreams: true,
	Handler: func(srv any, stream grpc.ServerStream) error {
		in := new(structpb.Struct)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return srv.(*Service).WatchEvents(in, stream)
	},
}

// ServiceDesc describes ConversationService. Requests and responses are
// google.protobuf.Struct messages, so the default proto codec carries them.
var ServiceDesc = serviceDesc()

func serviceDesc() grpc.ServiceDesc {
	methods := make([]grpc.MethodDesc, 0, len(unaryMethods))
	for _, m := range unaryMethods {
		methods = append(methods, unaryHandler(m.name, m.fn))
	}
	return grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*conversationServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{watchStream},
		Metadata:    "guftagu/v1/conversation.proto",
	}
}

func unaryHandler(name string, fn unaryFunc) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc := srv.(*Service)
			if interceptor == nil {
				return fn(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(svc, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// FullMethod returns the gRPC path of a ConversationService method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// Register registers svc on the gRPC server.
func Register(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&ServiceDesc, svc)
}
