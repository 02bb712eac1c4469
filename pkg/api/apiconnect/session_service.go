// Package apiconnect binds billsplit.v1.SessionService to Connect handlers
// and clients. All messages use a JSON codec.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/pkg/api"
)

// SessionServiceName is the fully-qualified name of the SessionService service.
const SessionServiceName = "billsplit.v1.SessionService"

// These constants are the fully-qualified names of the RPCs defined in
// SessionService. They are used as the Procedure of requests and in
// interceptors.
const (
	// SessionServiceStartSessionProcedure is the fully-qualified name of the SessionService's StartSession RPC.
	SessionServiceStartSessionProcedure = "/billsplit.v1.SessionService/StartSession"
	// SessionServiceGetSessionProcedure is the fully-qualified name of the SessionService's GetSession RPC.
	SessionServiceGetSessionProcedure = "/billsplit.v1.SessionService/GetSession"
	// SessionServiceSetItemsProcedure is the fully-qualified name of the SessionService's SetItems RPC.
	SessionServiceSetItemsProcedure = "/billsplit.v1.SessionService/SetItems"
	// SessionServiceExtractItemsProcedure is the fully-qualified name of the SessionService's ExtractItems RPC.
	SessionServiceExtractItemsProcedure = "/billsplit.v1.SessionService/ExtractItems"
	// SessionServiceUpdateItemProcedure is the fully-qualified name of the SessionService's UpdateItem RPC.
	SessionServiceUpdateItemProcedure = "/billsplit.v1.SessionService/UpdateItem"
	// SessionServiceAddParticipantProcedure is the fully-qualified name of the SessionService's AddParticipant RPC.
	SessionServiceAddParticipantProcedure = "/billsplit.v1.SessionService/AddParticipant"
	// SessionServiceRemoveParticipantProcedure is the fully-qualified name of the SessionService's RemoveParticipant RPC.
	SessionServiceRemoveParticipantProcedure = "/billsplit.v1.SessionService/RemoveParticipant"
	// SessionServiceSetShareProcedure is the fully-qualified name of the SessionService's SetShare RPC.
	SessionServiceSetShareProcedure = "/billsplit.v1.SessionService/SetShare"
	// SessionServiceSetTaxAmountProcedure is the fully-qualified name of the SessionService's SetTaxAmount RPC.
	SessionServiceSetTaxAmountProcedure = "/billsplit.v1.SessionService/SetTaxAmount"
	// SessionServiceGetSummaryProcedure is the fully-qualified name of the SessionService's GetSummary RPC.
	SessionServiceGetSummaryProcedure = "/billsplit.v1.SessionService/GetSummary"
	// SessionServiceSettleProcedure is the fully-qualified name of the SessionService's Settle RPC.
	SessionServiceSettleProcedure = "/billsplit.v1.SessionService/Settle"
	// SessionServiceExportSummaryProcedure is the fully-qualified name of the SessionService's ExportSummary RPC.
	SessionServiceExportSummaryProcedure = "/billsplit.v1.SessionService/ExportSummary"
	// SessionServiceResetProcedure is the fully-qualified name of the SessionService's Reset RPC.
	SessionServiceResetProcedure = "/billsplit.v1.SessionService/Reset"
	// SessionServiceEndSessionProcedure is the fully-qualified name of the SessionService's EndSession RPC.
	SessionServiceEndSessionProcedure = "/billsplit.v1.SessionService/EndSession"
)

// SessionServiceClient is a client for the billsplit.v1.SessionService service.
type SessionServiceClient interface {
	StartSession(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error)
	SetItems(context.Context, *connect.Request[api.SetItemsRequest]) (*connect.Response[api.SetItemsResponse], error)
	ExtractItems(context.Context, *connect.Request[api.ExtractItemsRequest]) (*connect.Response[api.ExtractItemsResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.SetShareResponse], error)
	SetTaxAmount(context.Context, *connect.Request[api.SetTaxAmountRequest]) (*connect.Response[api.SetTaxAmountResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	ExportSummary(context.Context, *connect.Request[api.ExportSummaryRequest]) (*connect.Response[api.ExportSummaryResponse], error)
	Reset(context.Context, *connect.Request[api.ResetRequest]) (*connect.Response[api.ResetResponse], error)
	EndSession(context.Context, *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error)
}

// NewSessionServiceClient constructs a client for the billsplit.v1.SessionService
// service. The JSON codec is always used.
//
// The URL supplied here should be the base URL for the Connect server
// (for example, http://api.acme.com or https://acme.com/grpc).
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &sessionServiceClient{
		startSession: connect.NewClient[api.StartSessionRequest, api.StartSessionResponse](
			httpClient,
			baseURL+SessionServiceStartSessionProcedure,
			opts...,
		),
		getSession: connect.NewClient[api.GetSessionRequest, api.GetSessionResponse](
			httpClient,
			baseURL+SessionServiceGetSessionProcedure,
			opts...,
		),
		setItems: connect.NewClient[api.SetItemsRequest, api.SetItemsResponse](
			httpClient,
			baseURL+SessionServiceSetItemsProcedure,
			opts...,
		),
		extractItems: connect.NewClient[api.ExtractItemsRequest, api.ExtractItemsResponse](
			httpClient,
			baseURL+SessionServiceExtractItemsProcedure,
			opts...,
		),
		updateItem: connect.NewClient[api.UpdateItemRequest, api.UpdateItemResponse](
			httpClient,
			baseURL+SessionServiceUpdateItemProcedure,
			opts...,
		),
		addParticipant: connect.NewClient[api.AddParticipantRequest, api.AddParticipantResponse](
			httpClient,
			baseURL+SessionServiceAddParticipantProcedure,
			opts...,
		),
		removeParticipant: connect.NewClient[api.RemoveParticipantRequest, api.RemoveParticipantResponse](
			httpClient,
			baseURL+SessionServiceRemoveParticipantProcedure,
			opts...,
		),
		setShare: connect.NewClient[api.SetShareRequest, api.SetShareResponse](
			httpClient,
			baseURL+SessionServiceSetShareProcedure,
			opts...,
		),
		setTaxAmount: connect.NewClient[api.SetTaxAmountRequest, api.SetTaxAmountResponse](
			httpClient,
			baseURL+SessionServiceSetTaxAmountProcedure,
			opts...,
		),
		getSummary: connect.NewClient[api.GetSummaryRequest, api.GetSummaryResponse](
			httpClient,
			baseURL+SessionServiceGetSummaryProcedure,
			opts...,
		),
		settle: connect.NewClient[api.SettleRequest, api.SettleResponse](
			httpClient,
			baseURL+SessionServiceSettleProcedure,
			opts...,
		),
		exportSummary: connect.NewClient[api.ExportSummaryRequest, api.ExportSummaryResponse](
			httpClient,
			baseURL+SessionServiceExportSummaryProcedure,
			opts...,
		),
		reset: connect.NewClient[api.ResetRequest, api.ResetResponse](
			httpClient,
			baseURL+SessionServiceResetProcedure,
			opts...,
		),
		endSession: connect.NewClient[api.EndSessionRequest, api.EndSessionResponse](
			httpClient,
			baseURL+SessionServiceEndSessionProcedure,
			opts...,
		),
	}
}

// sessionServiceClient implements SessionServiceClient.
type sessionServiceClient struct {
	startSession      *connect.Client[api.StartSessionRequest, api.StartSessionResponse]
	getSession        *connect.Client[api.GetSessionRequest, api.GetSessionResponse]
	setItems          *connect.Client[api.SetItemsRequest, api.SetItemsResponse]
	extractItems      *connect.Client[api.ExtractItemsRequest, api.ExtractItemsResponse]
	updateItem        *connect.Client[api.UpdateItemRequest, api.UpdateItemResponse]
	addParticipant    *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	removeParticipant *connect.Client[api.RemoveParticipantRequest, api.RemoveParticipantResponse]
	setShare          *connect.Client[api.SetShareRequest, api.SetShareResponse]
	setTaxAmount      *connect.Client[api.SetTaxAmountRequest, api.SetTaxAmountResponse]
	getSummary        *connect.Client[api.GetSummaryRequest, api.GetSummaryResponse]
	settle            *connect.Client[api.SettleRequest, api.SettleResponse]
	exportSummary     *connect.Client[api.ExportSummaryRequest, api.ExportSummaryResponse]
	reset             *connect.Client[api.ResetRequest, api.ResetResponse]
	endSession        *connect.Client[api.EndSessionRequest, api.EndSessionResponse]
}

// StartSession calls billsplit.v1.SessionService.StartSession.
func (c *sessionServiceClient) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

// GetSession calls billsplit.v1.SessionService.GetSession.
func (c *sessionServiceClient) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

// SetItems calls billsplit.v1.SessionService.SetItems.
func (c *sessionServiceClient) SetItems(ctx context.Context, req *connect.Request[api.SetItemsRequest]) (*connect.Response[api.SetItemsResponse], error) {
	return c.setItems.CallUnary(ctx, req)
}

// ExtractItems calls billsplit.v1.SessionService.ExtractItems.
func (c *sessionServiceClient) ExtractItems(ctx context.Context, req *connect.Request[api.ExtractItemsRequest]) (*connect.Response[api.ExtractItemsResponse], error) {
	return c.extractItems.CallUnary(ctx, req)
}

// UpdateItem calls billsplit.v1.SessionService.UpdateItem.
func (c *sessionServiceClient) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

// AddParticipant calls billsplit.v1.SessionService.AddParticipant.
func (c *sessionServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

// RemoveParticipant calls billsplit.v1.SessionService.RemoveParticipant.
func (c *sessionServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

// SetShare calls billsplit.v1.SessionService.SetShare.
func (c *sessionServiceClient) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.SetShareResponse], error) {
	return c.setShare.CallUnary(ctx, req)
}

// SetTaxAmount calls billsplit.v1.SessionService.SetTaxAmount.
func (c *sessionServiceClient) SetTaxAmount(ctx context.Context, req *connect.Request[api.SetTaxAmountRequest]) (*connect.Response[api.SetTaxAmountResponse], error) {
	return c.setTaxAmount.CallUnary(ctx, req)
}

// GetSummary calls billsplit.v1.SessionService.GetSummary.
func (c *sessionServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

// Settle calls billsplit.v1.SessionService.Settle.
func (c *sessionServiceClient) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

// ExportSummary calls billsplit.v1.SessionService.ExportSummary.
func (c *sessionServiceClient) ExportSummary(ctx context.Context, req *connect.Request[api.ExportSummaryRequest]) (*connect.Response[api.ExportSummaryResponse], error) {
	return c.exportSummary.CallUnary(ctx, req)
}

// Reset calls billsplit.v1.SessionService.Reset.
func (c *sessionServiceClient) Reset(ctx context.Context, req *connect.Request[api.ResetRequest]) (*connect.Response[api.ResetResponse], error) {
	return c.reset.CallUnary(ctx, req)
}

// EndSession calls billsplit.v1.SessionService.EndSession.
func (c *sessionServiceClient) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}

// SessionServiceHandler is an implementation of the billsplit.v1.SessionService service.
type SessionServiceHandler interface {
	StartSession(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error)
	SetItems(context.Context, *connect.Request[api.SetItemsRequest]) (*connect.Response[api.SetItemsResponse], error)
	ExtractItems(context.Context, *connect.Request[api.ExtractItemsRequest]) (*connect.Response[api.ExtractItemsResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.SetShareResponse], error)
	SetTaxAmount(context.Context, *connect.Request[api.SetTaxAmountRequest]) (*connect.Response[api.SetTaxAmountResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	ExportSummary(context.Context, *connect.Request[api.ExportSummaryRequest]) (*connect.Response[api.ExportSummaryResponse], error)
	Reset(context.Context, *connect.Request[api.ResetRequest]) (*connect.Response[api.ResetResponse], error)
	EndSession(context.Context, *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error)
}

// NewSessionServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	startSessionHandler := connect.NewUnaryHandler(
		SessionServiceStartSessionProcedure,
		svc.StartSession,
		opts...,
	)
	getSessionHandler := connect.NewUnaryHandler(
		SessionServiceGetSessionProcedure,
		svc.GetSession,
		opts...,
	)
	setItemsHandler := connect.NewUnaryHandler(
		SessionServiceSetItemsProcedure,
		svc.SetItems,
		opts...,
	)
	extractItemsHandler := connect.NewUnaryHandler(
		SessionServiceExtractItemsProcedure,
		svc.ExtractItems,
		opts...,
	)
	updateItemHandler := connect.NewUnaryHandler(
		SessionServiceUpdateItemProcedure,
		svc.UpdateItem,
		opts...,
	)
	addParticipantHandler := connect.NewUnaryHandler(
		SessionServiceAddParticipantProcedure,
		svc.AddParticipant,
		opts...,
	)
	removeParticipantHandler := connect.NewUnaryHandler(
		SessionServiceRemoveParticipantProcedure,
		svc.RemoveParticipant,
		opts...,
	)
	setShareHandler := connect.NewUnaryHandler(
		SessionServiceSetShareProcedure,
		svc.SetShare,
		opts...,
	)
	setTaxAmountHandler := connect.NewUnaryHandler(
		SessionServiceSetTaxAmountProcedure,
		svc.SetTaxAmount,
		opts...,
	)
	getSummaryHandler := connect.NewUnaryHandler(
		SessionServiceGetSummaryProcedure,
		svc.GetSummary,
		opts...,
	)
	settleHandler := connect.NewUnaryHandler(
		SessionServiceSettleProcedure,
		svc.Settle,
		opts...,
	)
	exportSummaryHandler := connect.NewUnaryHandler(
		SessionServiceExportSummaryProcedure,
		svc.ExportSummary,
		opts...,
	)
	resetHandler := connect.NewUnaryHandler(
		SessionServiceResetProcedure,
		svc.Reset,
		opts...,
	)
	endSessionHandler := connect.NewUnaryHandler(
		SessionServiceEndSessionProcedure,
		svc.EndSession,
		opts...,
	)
	return "/billsplit.v1.SessionService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SessionServiceStartSessionProcedure:
			startSessionHandler.ServeHTTP(w, r)
		case SessionServiceGetSessionProcedure:
			getSessionHandler.ServeHTTP(w, r)
		case SessionServiceSetItemsProcedure:
			setItemsHandler.ServeHTTP(w, r)
		case SessionServiceExtractItemsProcedure:
			extractItemsHandler.ServeHTTP(w, r)
		case SessionServiceUpdateItemProcedure:
			updateItemHandler.ServeHTTP(w, r)
		case SessionServiceAddParticipantProcedure:
			addParticipantHandler.ServeHTTP(w, r)
		case SessionServiceRemoveParticipantProcedure:
			removeParticipantHandler.ServeHTTP(w, r)
		case SessionServiceSetShareProcedure:
			setShareHandler.ServeHTTP(w, r)
		case SessionServiceSetTaxAmountProcedure:
			setTaxAmountHandler.ServeHTTP(w, r)
		case SessionServiceGetSummaryProcedure:
			getSummaryHandler.ServeHTTP(w, r)
		case SessionServiceSettleProcedure:
			settleHandler.ServeHTTP(w, r)
		case SessionServiceExportSummaryProcedure:
			exportSummaryHandler.ServeHTTP(w, r)
		case SessionServiceResetProcedure:
			resetHandler.ServeHTTP(w, r)
		case SessionServiceEndSessionProcedure:
			endSessionHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
