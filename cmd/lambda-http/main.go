package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/server/respond"
	"skillgap-backend/internal/shared/telemetry"
)

type proxy interface {
	ProxyWithContext(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)
}

// gateway builds the router on the first invocation and reuses it while the
// execution environment stays warm.
type gateway struct {
	once  sync.Once
	build func(ctx context.Context) (proxy, error)
	p     proxy
	err   error
}

func (g *gateway) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	g.once.Do(func() { g.p, g.err = g.build(context.WithoutCancel(ctx)) })
	if g.err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": g.err.Error()})
		return unavailable(), nil
	}
	return g.p.ProxyWithContext(ctx, req)
}

// unavailable answers with the API's own error envelope instead of letting
// API Gateway turn an invocation error into a bare 502.
func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.NewError("unavailable", "service is starting or misconfigured", nil))
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func buildProxy(ctx context.Context) (proxy, error) {
	app, err := bootstrap.Build(ctx, config.Load(), bootstrap.RoleAPI)
	if err != nil {
		return nil, err
	}
	return ginadapter.NewV2(app.Router), nil
}

func main() {
	g := &gateway{build: buildProxy}
	lambda.Start(g.handle)
}
