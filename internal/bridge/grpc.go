package bridge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"tablelog/internal/auth"
	"tablelog/internal/common"
)

// GRPCServer is the second surface over a Service. Both of its methods are
// unary; ListFiles returns the whole file list in one response message.
type GRPCServer struct {
	service *Service
	authMW  *auth.AuthMiddleware
}

// NewGRPCServer returns a GRPCServer. authMW may be nil to disable auth.
func NewGRPCServer(service *Service, authMW *auth.AuthMiddleware) *GRPCServer {
	return &GRPCServer{service: service, authMW: authMW}
}

// SnapshotRequest is the gRPC request for both unary methods.
type SnapshotRequest struct {
	Version int64 `json:"version"`
}

// Register builds a grpc.Server exposing GetSnapshot/ListFiles under the
// JSON codec and registers reflection for interactive exploration. Since
// this service has no compiled .proto descriptors (the JSON codec skips
// protoc entirely), reflection can enumerate the service and method names
// but not full request/response field descriptors.
func (g *GRPCServer) Register() *grpc.Server {
	srv := grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}), grpc.UnaryInterceptor(g.authInterceptor))
	srv.RegisterService(&serviceDesc, g)
	reflection.Register(srv)
	return srv
}

func (g *GRPCServer) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if g.authMW == nil {
		return handler(ctx, req)
	}
	if _, err := g.authMW.ExtractAndValidateToken(ctx, authorizationHeader(ctx)); err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthorized: %v", err)
	}
	return handler(ctx, req)
}

// authorizationHeader reads the "authorization" metadata value gRPC
// clients send per-call, mirroring the HTTP surface's header convention.
func authorizationHeader(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (g *GRPCServer) getSnapshot(ctx context.Context, req *SnapshotRequest) (*SnapshotSummary, error) {
	summary, err := g.service.Snapshot(ctx, req.Version)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return summary, nil
}

func (g *GRPCServer) listFiles(ctx context.Context, req *SnapshotRequest) (*ListFilesResult, error) {
	result, err := g.service.ListFiles(ctx, req.Version)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return result, nil
}

func toGRPCError(err error) error {
	if common.IsErrorCode(err, common.ErrTableNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	if common.IsErrorCode(err, common.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "tablelog.bridge.TableLogService",
	HandlerType: (*GRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSnapshot",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(SnapshotRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*GRPCServer)
				if interceptor == nil {
					return s.getSnapshot(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/tablelog.bridge.TableLogService/GetSnapshot"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.getSnapshot(ctx, req.(*SnapshotRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "ListFiles",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(SnapshotRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				s := srv.(*GRPCServer)
				if interceptor == nil {
					return s.listFiles(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/tablelog.bridge.TableLogService/ListFiles"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return s.listFiles(ctx, req.(*SnapshotRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tablelog/bridge.proto",
}
