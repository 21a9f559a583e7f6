package jitrpc

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/dynamic/grpcdynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// dexJitProto is the wire schema for the out-of-process codegen service:
// one unary method taking the pretty-printed imperative module as source
// text and returning one result per top-level def, tagged with its
// runtime type so the client can rebuild a jitrpc.Value without a shared
// Go type between client and server. Parsed from memory at dial time —
// this core never generates or checks in a .pb.go stub for it.
const dexJitProto = `
syntax = "proto3";
package dex.jit.v1;

message EvalRequest {
  string module_source = 1;
}

message EvalResult {
  string name = 1;
  string type = 2;
  string kind = 3;
  string encoded = 4;
}

message EvalResponse {
  repeated EvalResult results = 1;
}

service Jit {
  rpc Eval(EvalRequest) returns (EvalResponse);
}
`

// Remote is the Executor that ships eval-jit's work to an out-of-process
// codegen service over gRPC. The service address (Target) is the only
// configuration; the message schema and the Jit/Eval method are fixed
// (dexJitProto).
type Remote struct {
	Target string
	conn   *grpc.ClientConn
	method *desc.MethodDescriptor
}

// Dial opens the client connection and parses the wire schema. It must be
// called once before Eval; a Remote's zero value is not ready to use.
func (r *Remote) Dial() error {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"dex_jit.proto": dexJitProto,
		}),
	}
	fds, err := parser.ParseFiles("dex_jit.proto")
	if err != nil {
		return fmt.Errorf("parsing jit wire schema: %w", err)
	}
	svc := fds[0].FindService("dex.jit.v1.Jit")
	if svc == nil {
		return fmt.Errorf("internal: service dex.jit.v1.Jit missing from parsed schema")
	}
	method := svc.FindMethodByName("Eval")
	if method == nil {
		return fmt.Errorf("internal: method Eval missing from parsed schema")
	}
	conn, err := grpc.NewClient(r.Target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dialing jit service %s: %w", r.Target, err)
	}
	r.conn = conn
	r.method = method
	return nil
}

func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Remote) Eval(ctx context.Context, env topenv.TopEnv, m *dexir.ImpModule) (topenv.TopEnv, error) {
	if r.conn == nil || r.method == nil {
		return topenv.TopEnv{}, fmt.Errorf("jitrpc.Remote: Dial was never called")
	}

	req := dynamic.NewMessage(r.method.GetInputType())
	req.SetFieldByName("module_source", m.Pretty())

	stub := grpcdynamic.NewStub(r.conn)
	resp, err := stub.InvokeRpc(ctx, r.method, req)
	if err != nil {
		return topenv.TopEnv{}, fmt.Errorf("jit RPC failed: %w", err)
	}
	respMsg, ok := resp.(*dynamic.Message)
	if !ok {
		return topenv.TopEnv{}, fmt.Errorf("internal: unexpected response type %T", resp)
	}

	delta := topenv.New()
	for _, item := range respMsg.GetField(r.method.GetOutputType().FindFieldByName("results")).([]interface{}) {
		resultMsg, ok := item.(*dynamic.Message)
		if !ok {
			continue
		}
		name, _ := resultMsg.TryGetFieldByName("name")
		typeName, _ := resultMsg.TryGetFieldByName("type")
		kind, _ := resultMsg.TryGetFieldByName("kind")
		encoded, _ := resultMsg.TryGetFieldByName("encoded")

		val, err := decodeValue(fmt.Sprint(kind), fmt.Sprint(encoded))
		if err != nil {
			return topenv.TopEnv{}, fmt.Errorf("decoding result for %v: %w", name, err)
		}
		ty := decodeType(fmt.Sprint(typeName))
		delta = delta.With(fmt.Sprint(name), topenv.Binding{Type: ty, Atom: newAtom(val)})
	}
	return delta, nil
}

func decodeValue(kind, encoded string) (Value, error) {
	switch kind {
	case "int":
		n, err := strconv.ParseInt(encoded, 10, 64)
		if err != nil {
			return nil, err
		}
		return IntVal{V: n}, nil
	case "float":
		f, err := strconv.ParseFloat(encoded, 64)
		if err != nil {
			return nil, err
		}
		return FloatVal{V: f}, nil
	case "bool":
		return BoolVal{V: encoded == "true"}, nil
	default:
		return nil, fmt.Errorf("unsupported remote result kind %q", kind)
	}
}

func decodeType(name string) dexir.Type {
	switch strings.TrimSpace(name) {
	case "Int":
		return dexir.TInt{}
	case "Float":
		return dexir.TFloat{}
	case "Bool":
		return dexir.TBool{}
	default:
		return nil
	}
}

var _ io.Closer = (*Remote)(nil)
