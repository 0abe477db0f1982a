package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/export"
	"github.com/tfdiagram/tfdiagram/internal/handler"
	"github.com/tfdiagram/tfdiagram/internal/jcs"
	"github.com/tfdiagram/tfdiagram/internal/registry"
	"github.com/tfdiagram/tfdiagram/internal/render"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/schema"
)

// Operations accepted in LambdaEvent.Operation.
const (
	OpExport   = "export"
	OpValidate = "validate"
	OpDigest   = "digest"
	OpDOT      = "dot"
)

// LambdaEvent is the invocation payload (e.g. from API Gateway).
type LambdaEvent struct {
	Body       string `json:"body"` // document JSON (raw or base64 if isBase64)
	IsBase64   bool   `json:"isBase64,omitempty"`
	Operation  string `json:"operation,omitempty"` // default export
	EmitTfvars *bool  `json:"emitTfvars,omitempty"`
	// StrictTypes fails the request on unknown component types instead of skipping them.
	StrictTypes bool `json:"strictTypes,omitempty"`
}

// LambdaResponse is returned to the client (API Gateway).
type LambdaResponse struct {
	StatusCode int               `json:"statusCode"`
	Success    bool              `json:"success"`
	Errors     []result.Error    `json:"errors,omitempty"`
	Warnings   []result.Warning  `json:"warnings,omitempty"`
	Files      map[string]string `json:"files,omitempty"` // filename -> content (base64)
	Digest     string            `json:"digest,omitempty"`
	DOT        string            `json:"dot,omitempty"`
}

// APIGatewayResponse is the shape expected by API Gateway proxy integration (body = JSON string).
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type server struct {
	reg *registry.Registry
}

func fail(status int, typ, msg string) LambdaResponse {
	return LambdaResponse{
		StatusCode: status,
		Errors:     []result.Error{{Type: typ, Severity: result.SeverityError, Message: msg}},
	}
}

func (s *server) handle(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	return wrap(s.process(ctx, event)), nil
}

func (s *server) process(_ context.Context, event LambdaEvent) LambdaResponse {
	body := []byte(event.Body)
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return fail(400, "invalid_input", "invalid base64 body: "+err.Error())
		}
		body = dec
	}

	if err := schema.Validate(body); err != nil {
		return fail(400, "invalid_json", "invalid diagram JSON: "+err.Error())
	}

	var opts []diagram.Option
	if event.StrictTypes {
		opts = append(opts, diagram.WithUnknownTypePolicy(diagram.FailOnUnknown))
	}
	loaded, err := diagram.Unmarshal(body, s.reg, opts...)
	if err != nil {
		status := 400
		if errors.Is(err, diagram.ErrUnknownComponentType) {
			status = 422
		}
		return fail(status, "invalid_json", "invalid diagram JSON: "+err.Error())
	}
	d := loaded.Document

	out := LambdaResponse{StatusCode: 200, Success: true}
	for _, sk := range loaded.Skipped {
		out.Warnings = append(out.Warnings, result.Advise(sk.NodeID, "skipped under "+sk.ParentID+": "+sk.String(),
			"Register the component type or remove the node"))
	}

	switch event.Operation {
	case "", OpExport:
		opts := export.DefaultOptions()
		if event.EmitTfvars != nil {
			opts.EmitTfvars = *event.EmitTfvars
		}
		res, err := export.New(s.reg, opts).Export(d)
		if err != nil {
			return fail(500, "export_error", err.Error())
		}
		out.Success = res.Success
		out.Errors = res.Errors
		out.Warnings = append(out.Warnings, res.Warnings...)
		if res.Success && len(res.TerraformFiles) > 0 {
			out.Files = make(map[string]string, len(res.TerraformFiles))
			for name, content := range res.TerraformFiles {
				out.Files[name] = base64.StdEncoding.EncodeToString(content)
			}
		}
		if !res.Success {
			out.StatusCode = 422
		}
	case OpValidate:
		out.Errors = export.ValidationErrors(d)
		if len(out.Errors) > 0 {
			out.Success = false
			out.StatusCode = 422
		}
	case OpDigest:
		digest, err := jcs.Digest(d)
		if err != nil {
			return fail(500, "digest_error", err.Error())
		}
		out.Digest = digest
	case OpDOT:
		out.DOT = render.ToDOT(d, render.Options{})
	default:
		return fail(400, "invalid_input", "unknown operation: "+event.Operation)
	}
	return out
}

func wrap(out LambdaResponse) APIGatewayResponse {
	bodyBytes, _ := json.Marshal(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	s := &server{reg: handler.NewRegistry()}
	lambda.Start(s.handle)
}
