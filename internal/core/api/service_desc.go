package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified admin service name.
const ServiceName = "shutterbook.admin.v1.FormBuilder"

// Full method names, used by interceptors and clients.
const (
	FormBuilder_InitDraft_FullMethodName      = "/" + ServiceName + "/InitDraft"
	FormBuilder_GetDraft_FullMethodName       = "/" + ServiceName + "/GetDraft"
	FormBuilder_AddStep_FullMethodName        = "/" + ServiceName + "/AddStep"
	FormBuilder_RemoveStep_FullMethodName     = "/" + ServiceName + "/RemoveStep"
	FormBuilder_ValidateDraft_FullMethodName  = "/" + ServiceName + "/ValidateDraft"
	FormBuilder_PublishDraft_FullMethodName   = "/" + ServiceName + "/PublishDraft"
	FormBuilder_UpsertCategory_FullMethodName = "/" + ServiceName + "/UpsertCategory"
)

// FormBuilderServer is the server API for the form builder service.
type FormBuilderServer interface {
	InitDraft(context.Context, *InitDraftRequest) (*DraftResponse, error)
	GetDraft(context.Context, *GetDraftRequest) (*DraftResponse, error)
	AddStep(context.Context, *AddStepRequest) (*DraftResponse, error)
	RemoveStep(context.Context, *RemoveStepRequest) (*DraftResponse, error)
	ValidateDraft(context.Context, *ValidateDraftRequest) (*ValidateDraftResponse, error)
	PublishDraft(context.Context, *PublishDraftRequest) (*PublishDraftResponse, error)
	UpsertCategory(context.Context, *UpsertCategoryRequest) (*UpsertCategoryResponse, error)
}

// RegisterFormBuilderServer registers srv on s.
func RegisterFormBuilderServer(s grpc.ServiceRegistrar, srv FormBuilderServer) {
	s.RegisterService(&FormBuilder_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler, running the
// server's interceptor chain when one is installed.
func unaryHandler[Req, Resp any](fullMethod string, call func(FormBuilderServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FormBuilderServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(FormBuilderServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FormBuilder_ServiceDesc is the grpc.ServiceDesc for the form builder service.
var FormBuilder_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FormBuilderServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "InitDraft",
			Handler:    unaryHandler(FormBuilder_InitDraft_FullMethodName, FormBuilderServer.InitDraft),
		},
		{
			MethodName: "GetDraft",
			Handler:    unaryHandler(FormBuilder_GetDraft_FullMethodName, FormBuilderServer.GetDraft),
		},
		{
			MethodName: "AddStep",
			Handler:    unaryHandler(FormBuilder_AddStep_FullMethodName, FormBuilderServer.AddStep),
		},
		{
			MethodName: "RemoveStep",
			Handler:    unaryHandler(FormBuilder_RemoveStep_FullMethodName, FormBuilderServer.RemoveStep),
		},
		{
			MethodName: "ValidateDraft",
			Handler:    unaryHandler(FormBuilder_ValidateDraft_FullMethodName, FormBuilderServer.ValidateDraft),
		},
		{
			MethodName: "PublishDraft",
			Handler:    unaryHandler(FormBuilder_PublishDraft_FullMethodName, FormBuilderServer.PublishDraft),
		},
		{
			MethodName: "UpsertCategory",
			Handler:    unaryHandler(FormBuilder_UpsertCategory_FullMethodName, FormBuilderServer.UpsertCategory),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shutterbook/admin/v1/form_builder",
}

// FormBuilderClient calls the form builder service over the JSON codec.
type FormBuilderClient struct {
	cc grpc.ClientConnInterface
}

// NewFormBuilderClient wraps an established connection.
func NewFormBuilderClient(cc grpc.ClientConnInterface) *FormBuilderClient {
	return &FormBuilderClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FormBuilderClient) InitDraft(ctx context.Context, in *InitDraftRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, FormBuilder_InitDraft_FullMethodName, in, opts)
}

func (c *FormBuilderClient) GetDraft(ctx context.Context, in *GetDraftRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, FormBuilder_GetDraft_FullMethodName, in, opts)
}

func (c *FormBuilderClient) AddStep(ctx context.Context, in *AddStepRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, FormBuilder_AddStep_FullMethodName, in, opts)
}

func (c *FormBuilderClient) RemoveStep(ctx context.Context, in *RemoveStepRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, FormBuilder_RemoveStep_FullMethodName, in, opts)
}

func (c *FormBuilderClient) ValidateDraft(ctx context.Context, in *ValidateDraftRequest, opts ...grpc.CallOption) (*ValidateDraftResponse, error) {
	return invoke[ValidateDraftResponse](ctx, c.cc, FormBuilder_ValidateDraft_FullMethodName, in, opts)
}

func (c *FormBuilderClient) PublishDraft(ctx context.Context, in *PublishDraftRequest, opts ...grpc.CallOption) (*PublishDraftResponse, error) {
	return invoke[PublishDraftResponse](ctx, c.cc, FormBuilder_PublishDraft_FullMethodName, in, opts)
}

func (c *FormBuilderClient) UpsertCategory(ctx context.Context, in *UpsertCategoryRequest, opts ...grpc.CallOption) (*UpsertCategoryResponse, error) {
	return invoke[UpsertCategoryResponse](ctx, c.cc, FormBuilder_UpsertCategory_FullMethodName, in, opts)
}
