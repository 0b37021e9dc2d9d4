package transform

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/linabutler/ploidy/pkg/ir"
)

var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD", "TRACE"}

// buildOperations lowers every path operation in the document. Paths are
// visited in sorted order, methods in a fixed order, so operation order is
// deterministic.
func (t *Transformer) buildOperations() {
	if t.doc.Paths == nil {
		return
	}
	pathMap := t.doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		operations := []*openapi3.Operation{
			item.Get, item.Post, item.Put, item.Patch,
			item.Delete, item.Options, item.Head, item.Trace,
		}
		for i, op := range operations {
			if op == nil {
				continue
			}
			t.buildOperation(path, methodOrder[i], op)
		}
	}
}

func (t *Transformer) buildOperation(path, method string, op *openapi3.Operation) {
	ptr := "/paths/" + escapeToken(path) + "/" + escapeToken(method)

	if op.OperationID == "" {
		t.spec.Diag(ir.DiagNoOperationID, ptr, fmt.Sprintf("%s %s has no operationId", method, path))
		return
	}
	segments, err := ParsePathTemplate(path)
	if err != nil {
		t.spec.Diag(ir.DiagStructural, ptr, err.Error())
		return
	}

	out := &ir.Operation{
		ID:          op.OperationID,
		Method:      method,
		Path:        segments,
		Resource:    extensionString(op.Extensions, "x-resource-name"),
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Params:      t.buildParams(ptr, op),
		Request:     t.buildRequest(ptr, op),
		Responses:   t.buildResponses(ptr, op),
	}
	if len(op.Tags) > 0 {
		out.Tag = op.Tags[0]
	}
	t.spec.Operations = append(t.spec.Operations, out)
}

func (t *Transformer) buildParams(ptr string, op *openapi3.Operation) []ir.Parameter {
	var params []ir.Parameter
	for i, pr := range op.Parameters {
		if pr == nil {
			continue
		}
		paramPtr := fmt.Sprintf("%s/parameters/%d", ptr, i)
		param := pr.Value
		if pr.Ref != "" {
			resolved, err := t.res.Parameter(pr.Ref)
			if err != nil {
				if param == nil {
					t.diagRef(paramPtr, err)
					continue
				}
			} else {
				param = resolved
			}
		}
		if param == nil {
			continue
		}

		location := ir.ParamLocation(param.In)
		switch location {
		case ir.InPath, ir.InQuery, ir.InHeader, ir.InCookie:
		default:
			continue
		}

		var ty *ir.Type
		switch {
		case param.Schema == nil:
			ty = ir.AnyType()
		case param.Schema.Ref != "":
			ty = t.refType(paramPtr+"/schema", param.Schema.Ref)
		default:
			paramID := ir.InlineID(ir.OperationPath(op.OperationID, ir.ParameterSegment(param.Name)))
			ty = t.transformChildAt(paramID, paramPtr+"/schema", param.Schema)
		}

		params = append(params, ir.Parameter{
			Name:        param.Name,
			In:          location,
			Required:    param.Required,
			Type:        ty,
			Description: param.Description,
		})
	}
	return params
}

func (t *Transformer) buildRequest(ptr string, op *openapi3.Operation) *ir.Request {
	if op.RequestBody == nil {
		return nil
	}
	requestPtr := ptr + "/requestBody"
	rb := op.RequestBody.Value
	if op.RequestBody.Ref != "" {
		resolved, err := t.res.RequestBody(op.RequestBody.Ref)
		if err != nil {
			if rb == nil {
				t.diagRef(requestPtr, err)
				return nil
			}
		} else {
			rb = resolved
		}
	}
	if rb == nil {
		return nil
	}

	if _, ok := rb.Content["multipart/form-data"]; ok {
		return &ir.Request{Multipart: true, Required: rb.Required}
	}
	sr := jsonContentSchema(rb.Content)
	if sr == nil {
		return &ir.Request{Required: rb.Required, Type: ir.AnyType()}
	}

	var ty *ir.Type
	if sr.Ref != "" {
		ty = t.refType(requestPtr, sr.Ref)
	} else {
		requestID := ir.InlineID(ir.OperationPath(op.OperationID, ir.RequestBodySegment()))
		ty = t.transformChildAt(requestID, requestPtr, sr)
	}
	return &ir.Request{Required: rb.Required, Type: ty}
}

// buildResponses lowers the full response table: numeric statuses in
// ascending order, with "default" last.
func (t *Transformer) buildResponses(ptr string, op *openapi3.Operation) []ir.Response {
	if op.Responses == nil {
		return nil
	}
	responseMap := op.Responses.Map()

	type status struct {
		key  string
		code int
	}
	var statuses []status
	hasDefault := false
	for key := range responseMap {
		if key == "default" {
			hasDefault = true
			continue
		}
		code, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		statuses = append(statuses, status{key: key, code: code})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].code < statuses[j].code })
	if hasDefault {
		statuses = append(statuses, status{key: "default"})
	}

	var responses []ir.Response
	for _, st := range statuses {
		rr := responseMap[st.key]
		if rr == nil {
			continue
		}
		responsePtr := ptr + "/responses/" + st.key
		response := rr.Value
		if rr.Ref != "" {
			resolved, err := t.res.Response(rr.Ref)
			if err != nil {
				if response == nil {
					t.diagRef(responsePtr, err)
					continue
				}
			} else {
				response = resolved
			}
		}
		if response == nil {
			continue
		}

		out := ir.Response{Status: st.key}
		if response.Description != nil {
			out.Description = *response.Description
		}
		if sr := jsonContentSchema(response.Content); sr != nil {
			if sr.Ref != "" {
				out.Type = t.refType(responsePtr, sr.Ref)
			} else {
				bodyID := ir.InlineID(ir.OperationPath(op.OperationID,
					ir.ResponseSegment(st.key), ir.BodySegment()))
				out.Type = t.transformChildAt(bodyID, responsePtr, sr)
			}
		}
		responses = append(responses, out)
	}
	return responses
}

// jsonContentSchema picks the schema to lower from a content map, preferring
// application/json, then the wildcard media type.
func jsonContentSchema(content openapi3.Content) *openapi3.SchemaRef {
	if media, ok := content["application/json"]; ok && media.Schema != nil {
		return media.Schema
	}
	if media, ok := content["*/*"]; ok && media.Schema != nil {
		return media.Schema
	}
	return nil
}
