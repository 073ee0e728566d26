package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultReadyCeiling bounds how long WaitReady polls for the runtime to
// load before declaring it unavailable. Computation itself is never
// time-bounded.
const DefaultReadyCeiling = 15 * time.Second

// sympyProgram is the embedded algebra runtime: a SymPy loop speaking one
// JSON frame per line over stdin/stdout. It prints a ready frame once its
// imports have loaded and exits at EOF.
const sympyProgram = `
import json, math, sys

def emit(obj):
    sys.stdout.write(json.dumps(obj) + "\n")
    sys.stdout.flush()

try:
    import sympy
except Exception as exc:
    emit({"ready": False, "error": str(exc)})
    sys.exit(1)

X = sympy.Symbol("x")

def parse(src):
    return sympy.sympify(src, locals={"x": X})

def render(obj):
    return {"latex": sympy.latex(obj), "raw": sympy.sstr(obj)}

def run(op, src, xs):
    if op == "sample":
        e = parse(src)
        extra = e.free_symbols - {X}
        if extra:
            raise ValueError("free symbols other than x: %s" % sorted(str(s) for s in extra))
        f = sympy.lambdify(X, e, modules=["math"])
        ys = []
        for xv in xs:
            try:
                y = f(xv)
            except Exception:
                ys.append(None)
                continue
            if isinstance(y, bool) or not isinstance(y, (int, float)) or not math.isfinite(y):
                ys.append(None)
            else:
                ys.append(y)
        return {"ys": ys}
    e = parse(src)
    if op == "solve":
        return render(sympy.solve(e, X))
    if op == "nsolve":
        return render([sympy.N(r) for r in sympy.solve(e, X)])
    if op == "evalf":
        return render(sympy.N(e))
    if op == "factor":
        return render(sympy.factor(e))
    if op == "diff":
        return render(sympy.diff(e, X))
    if op == "integrate":
        return render(sympy.integrate(e, X))
    if op == "simplify":
        return render(sympy.simplify(e))
    if op == "expand":
        return render(sympy.expand(e))
    raise ValueError("unknown op: %s" % op)

emit({"ready": True, "engine": "sympy", "version": sympy.__version__})

for line in sys.stdin:
    line = line.strip()
    if not line:
        continue
    try:
        req = json.loads(line)
    except Exception as exc:
        emit({"id": None, "ok": False, "error": "bad request frame: %s" % exc})
        continue
    resp = {"id": req.get("id"), "ok": True}
    try:
        resp.update(run(req.get("op"), req.get("expr", ""), req.get("xs") or []))
    except Exception as exc:
        resp = {"id": req.get("id"), "ok": False, "error": str(exc)}
    emit(resp)
`

// SymPy runs the algebra runtime as an embedded interpreter subprocess and
// bridges requests to it. The bridge's only original logic is request
// construction and response shape validation; every fault the runtime can
// produce is converted to an *Error at this boundary.
type SymPy struct {
	python  string
	ceiling time.Duration
	log     *slog.Logger

	// mu serializes request/response frames on the shared pipe pair.
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	ready   atomic.Bool
	readyCh chan struct{}
}

// SymPyOption configures the bridge.
type SymPyOption func(*SymPy)

// WithPython sets the interpreter binary (default "python3").
func WithPython(path string) SymPyOption {
	return func(s *SymPy) { s.python = path }
}

// WithReadyCeiling sets the fixed ceiling on the readiness wait.
func WithReadyCeiling(d time.Duration) SymPyOption {
	return func(s *SymPy) { s.ceiling = d }
}

// WithLogger sets the logger the runtime's stderr is drained to.
func WithLogger(l *slog.Logger) SymPyOption {
	return func(s *SymPy) { s.log = l }
}

// NewSymPy builds an unstarted bridge. Call Start, then WaitReady.
func NewSymPy(opts ...SymPyOption) *SymPy {
	s := &SymPy{
		python:  "python3",
		ceiling: DefaultReadyCeiling,
		log:     slog.Default(),
		readyCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the interpreter. Readiness is reported asynchronously once
// the runtime's imports load; use WaitReady before dispatching.
func (s *SymPy) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return &Error{Message: "already started"}
	}
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	cmd := exec.Command(s.python, "-c", sympyProgram)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &Error{Message: "stdin pipe: " + err.Error()}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Error{Message: "stdout pipe: " + err.Error()}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &Error{Message: "stderr pipe: " + err.Error()}
	}
	if err := cmd.Start(); err != nil {
		return &Error{Message: "start " + s.python + ": " + err.Error()}
	}
	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	go s.drainStderr(stderr)
	go s.awaitReady()
	return nil
}

func (s *SymPy) drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.log.Debug("engine stderr", "line", sc.Text())
	}
}

// awaitReady consumes the handshake frame. On failure the ready channel is
// simply never closed and WaitReady's ceiling fires.
func (s *SymPy) awaitReady() {
	line, err := s.stdout.ReadString('\n')
	if err != nil {
		s.log.Warn("engine exited before handshake", "error", err)
		return
	}
	if !gjson.Valid(line) || !gjson.Get(line, "ready").Exists() {
		s.log.Warn("malformed engine handshake", "line", line)
		return
	}
	if !gjson.Get(line, "ready").Bool() {
		s.log.Warn("engine failed to load", "error", gjson.Get(line, "error").String())
		return
	}
	s.log.Info("engine ready", "version", gjson.Get(line, "version").String())
	s.ready.Store(true)
	close(s.readyCh)
}

// Ready reports whether the handshake has completed.
func (s *SymPy) Ready() bool { return s.ready.Load() }

// WaitReady blocks until the runtime has loaded, the context is done, or the
// fixed ceiling elapses. The latter two report ErrUnavailable.
func (s *SymPy) WaitReady(ctx context.Context) error {
	timer := time.NewTimer(s.ceiling)
	defer timer.Stop()
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ErrUnavailable
	case <-timer.C:
		return ErrUnavailable
	}
}

type sympyRequest struct {
	ID   string    `json:"id"`
	Op   string    `json:"op"`
	Expr string    `json:"expr"`
	Xs   []float64 `json:"xs,omitempty"`
}

// call writes one request frame and reads one response frame, validating the
// frame's basic shape and that it answers this request. The context gates
// dispatch only; a computation in progress runs to completion.
func (s *SymPy) call(ctx context.Context, req sympyRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Message: "encode request: " + err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdin == nil {
		return "", ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", &Error{Message: "dispatch canceled: " + err.Error()}
	}
	if _, err := s.stdin.Write(append(payload, '\n')); err != nil {
		return "", &Error{Message: "write to runtime: " + err.Error()}
	}
	line, err := s.stdout.ReadString('\n')
	if err != nil {
		return "", &Error{Message: "read from runtime: " + err.Error()}
	}
	if !gjson.Valid(line) {
		return "", &Error{Message: "malformed response frame"}
	}
	if got := gjson.Get(line, "id").String(); got != req.ID {
		return "", &Error{Message: "response frame for wrong request id: " + got}
	}
	ok := gjson.Get(line, "ok")
	if ok.Type != gjson.True && ok.Type != gjson.False {
		return "", &Error{Message: "response frame missing ok field"}
	}
	if !ok.Bool() {
		msg := gjson.Get(line, "error").String()
		if msg == "" {
			msg = "runtime rejected the expression"
		}
		return "", &Error{Message: msg}
	}
	return line, nil
}

// Do runs one symbolic action and returns its two artifacts.
func (s *SymPy) Do(ctx context.Context, op Op, expr string) (*Result, error) {
	if !s.Ready() {
		return nil, ErrUnavailable
	}
	line, err := s.call(ctx, sympyRequest{ID: uuid.NewString(), Op: string(op), Expr: expr})
	if err != nil {
		return nil, err
	}
	latex := gjson.Get(line, "latex")
	raw := gjson.Get(line, "raw")
	if !latex.Exists() || !raw.Exists() {
		return nil, &Error{Message: "response frame missing result fields"}
	}
	return &Result{LaTeX: latex.String(), Raw: raw.String()}, nil
}

// Sample evaluates expr pointwise via the runtime. Null entries in the
// response become NaN markers.
func (s *SymPy) Sample(ctx context.Context, expr string, xs []float64) ([]float64, error) {
	if !s.Ready() {
		return nil, ErrUnavailable
	}
	line, err := s.call(ctx, sympyRequest{ID: uuid.NewString(), Op: "sample", Expr: expr, Xs: xs})
	if err != nil {
		return nil, err
	}
	arr := gjson.Get(line, "ys")
	if !arr.IsArray() {
		return nil, &Error{Message: "response frame missing ys field"}
	}
	values := arr.Array()
	ys := make([]float64, len(values))
	for i, v := range values {
		if v.Type == gjson.Null {
			ys[i] = math.NaN()
			continue
		}
		if v.Type != gjson.Number {
			return nil, &Error{Message: "non-numeric sample in response frame"}
		}
		ys[i] = v.Float()
	}
	return ys, nil
}

// Close shuts the runtime down by closing its stdin and reaping the process.
func (s *SymPy) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return nil
	}
	_ = s.stdin.Close()
	err := s.cmd.Wait()
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	s.ready.Store(false)
	if err != nil {
		return &Error{Message: "runtime exit: " + err.Error()}
	}
	return nil
}
