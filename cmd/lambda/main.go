package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"hard-backend/infrastructure/config"
	"hard-backend/infrastructure/di"
	"hard-backend/interfaces/http/rest/middleware"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container

	coldStart     = true
	coldStartTime time.Time
)

func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// Identity comes from the API Gateway JWT authorizer.
	cfg.IsLambda = true

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiLambda = chiadapter.NewV2(container.Router.Setup())

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	forwardIdentity(&req)

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if err != nil {
		container.Logger.Error("Lambda proxy failed",
			zap.Error(err),
			zap.String("request_id", req.RequestContext.RequestID),
		)
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, err
	}

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	return resp, nil
}

// forwardIdentity replaces any client supplied identity headers with the
// claims the JWT authorizer validated.
func forwardIdentity(req *events.APIGatewayV2HTTPRequest) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	for _, h := range []string{middleware.HeaderGatewayAuthorized, middleware.HeaderUserID, middleware.HeaderUserEmail} {
		delete(req.Headers, h)
		delete(req.Headers, http.CanonicalHeaderKey(h))
		delete(req.Headers, strings.ToLower(h))
	}

	authorizer := req.RequestContext.Authorizer
	if authorizer == nil || authorizer.JWT == nil {
		return
	}
	claims := authorizer.JWT.Claims
	if claims["sub"] == "" {
		return
	}

	req.Headers[middleware.HeaderGatewayAuthorized] = "true"
	req.Headers[middleware.HeaderUserID] = claims["sub"]
	req.Headers[middleware.HeaderUserEmail] = claims["email"]
}

func main() {
	lambda.Start(Handler)
}
