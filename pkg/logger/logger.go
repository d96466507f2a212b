package logger

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"text/template"
	"time"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	requestutil "github.com/canvas-auth/canvas-auth-proxy/pkg/requests/util"
)

// Default line templates. The fields available to each are those of
// stdLine, authLine and reqLine.
const (
	DefaultStandardLoggingFormat = "[{{.Timestamp}}] [{{.File}}] {{.Message}}"
	DefaultAuthLoggingFormat     = "{{.Client}} - {{.RequestID}} - {{.User}} [{{.Timestamp}}] [{{.Status}}] {{.Message}}"
	DefaultRequestLoggingFormat  = "{{.Client}} - {{.RequestID}} - {{.User}} [{{.Timestamp}}] {{.Host}} {{.RequestMethod}} {{.Upstream}} {{.RequestURI}} {{.Protocol}} {{.UserAgent}} {{.StatusCode}} {{.ResponseSize}} {{.RequestDuration}}"
)

// AuthStatus is the outcome recorded on an auth line.
type AuthStatus string

const (
	// AuthSuccess records a completed login.
	AuthSuccess AuthStatus = "AuthSuccess"
	// AuthFailure records a login refused by Canvas or the gate.
	AuthFailure AuthStatus = "AuthFailure"
	// AuthError records a login that could not complete.
	AuthError AuthStatus = "AuthError"
)

// Flags controlling the standard line.
const (
	// Lshortfile puts the caller's file base name and line in File.
	Lshortfile = 1 << iota
	// LUTC formats timestamps in UTC.
	LUTC
)

type stdLine struct {
	Timestamp, File, Message string
}

type authLine struct {
	Client, Host, Protocol, RequestID, RequestMethod string
	Timestamp, UserAgent, User, Status, Message      string
}

type reqLine struct {
	Client, Host, Protocol, RequestID, RequestMethod string
	RequestDuration, RequestURI, ResponseSize        string
	StatusCode, Timestamp, Upstream, UserAgent, User string
}

// GetClientFunc returns the client address recorded on auth and request
// lines.
type GetClientFunc = func(r *http.Request) string

// stream is one kind of log line: its template and whether it is written.
type stream struct {
	enabled bool
	tmpl    *template.Template
}

func newStream(name, format string) stream {
	return stream{enabled: true, tmpl: template.Must(template.New(name).Parse(format))}
}

// Logger writes standard, auth and request lines. It is safe for
// concurrent use.
type Logger struct {
	mu           sync.Mutex
	flags        int
	out, errOut  io.Writer
	std          stream
	auth         stream
	req          stream
	clientFunc   GetClientFunc
	excludePaths map[string]bool
}

// New creates a Logger writing to stdout, with errors to stderr.
func New(flags int) *Logger {
	return &Logger{
		flags:      flags,
		out:        os.Stdout,
		errOut:     os.Stderr,
		std:        newStream("std-log", DefaultStandardLoggingFormat),
		auth:       newStream("auth-log", DefaultAuthLoggingFormat),
		req:        newStream("req-log", DefaultRequestLoggingFormat),
		clientFunc: func(r *http.Request) string { return r.RemoteAddr },
	}
}

var std = New(Lshortfile)

// write renders data through s and terminates the line. Callers hold l.mu.
func (l *Logger) write(w io.Writer, s stream, data interface{}) {
	buf := new(bytes.Buffer)
	if err := s.tmpl.Execute(buf, data); err != nil {
		panic(err)
	}
	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		panic(err)
	}
}

func (l *Logger) timestamp() string {
	now := time.Now()
	if l.flags&LUTC != 0 {
		now = now.UTC()
	}
	return now.Format("2006/01/02 15:04:05")
}

// output writes a standard line for the caller skip frames up. Errors go to
// the error writer.
func (l *Logger) output(isErr bool, skip int, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.std.enabled {
		return
	}

	file := "???:0"
	if l.flags&Lshortfile != 0 {
		if _, path, line, ok := runtime.Caller(skip + 1); ok {
			file = fmt.Sprintf("%s:%d", filepath.Base(path), line)
		}
	}

	w := l.out
	if isErr {
		w = l.errOut
	}
	l.write(w, l.std, stdLine{Timestamp: l.timestamp(), File: file, Message: message})
}

// PrintAuthf writes an auth line for req. An empty user is logged as "-".
func (l *Logger) PrintAuthf(user string, req *http.Request, status AuthStatus, format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.auth.enabled {
		return
	}

	l.write(l.out, l.auth, authLine{
		Client:        l.clientFunc(req),
		Host:          requestutil.GetRequestHost(req),
		Protocol:      req.Proto,
		RequestID:     requestID(req),
		RequestMethod: req.Method,
		Timestamp:     l.timestamp(),
		UserAgent:     fmt.Sprintf("%q", req.UserAgent()),
		User:          orDash(user),
		Status:        string(status),
		Message:       fmt.Sprintf(format, a...),
	})
}

// PrintReq writes an access line for a completed request unless its path
// is excluded.
func (l *Logger) PrintReq(user, upstream string, req *http.Request, u url.URL, duration time.Duration, status int, size int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.req.enabled || l.excludePaths[u.Path] {
		return
	}

	l.write(l.out, l.req, reqLine{
		Client:          l.clientFunc(req),
		Host:            requestutil.GetRequestHost(req),
		Protocol:        req.Proto,
		RequestID:       requestID(req),
		RequestMethod:   req.Method,
		RequestDuration: fmt.Sprintf("%0.3f", duration.Seconds()),
		RequestURI:      fmt.Sprintf("%q", u.RequestURI()),
		ResponseSize:    fmt.Sprintf("%d", size),
		StatusCode:      fmt.Sprintf("%d", status),
		Timestamp:       l.timestamp(),
		Upstream:        orDash(upstream),
		UserAgent:       fmt.Sprintf("%q", req.UserAgent()),
		User:            orDash(user),
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func requestID(req *http.Request) string {
	if scope := middlewareapi.GetRequestScope(req); scope != nil {
		return scope.RequestID
	}
	return "-"
}

// configure applies f to l under its lock.
func (l *Logger) configure(f func(l *Logger)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l)
}

func (l *Logger) SetFlags(flags int) { l.configure(func(l *Logger) { l.flags = flags }) }

func (l *Logger) SetStandardEnabled(e bool) { l.configure(func(l *Logger) { l.std.enabled = e }) }

func (l *Logger) SetAuthEnabled(e bool) { l.configure(func(l *Logger) { l.auth.enabled = e }) }

func (l *Logger) SetReqEnabled(e bool) { l.configure(func(l *Logger) { l.req.enabled = e }) }

func (l *Logger) SetGetClientFunc(f GetClientFunc) { l.configure(func(l *Logger) { l.clientFunc = f }) }

// SetStandardTemplate replaces the standard line template. It panics on an
// invalid template; formats are validated with the rest of the options.
func (l *Logger) SetStandardTemplate(t string) {
	l.configure(func(l *Logger) { l.std.tmpl = template.Must(template.New("std-log").Parse(t)) })
}

func (l *Logger) SetAuthTemplate(t string) {
	l.configure(func(l *Logger) { l.auth.tmpl = template.Must(template.New("auth-log").Parse(t)) })
}

func (l *Logger) SetReqTemplate(t string) {
	l.configure(func(l *Logger) { l.req.tmpl = template.Must(template.New("req-log").Parse(t)) })
}

// SetExcludePaths lists request paths that never get an access line, such
// as the ping endpoint.
func (l *Logger) SetExcludePaths(paths []string) {
	l.configure(func(l *Logger) {
		l.excludePaths = make(map[string]bool, len(paths))
		for _, p := range paths {
			l.excludePaths[p] = true
		}
	})
}

// Flags returns the flags of the process logger.
func Flags() int {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.flags
}

func SetFlags(flags int)               { std.SetFlags(flags) }
func SetOutput(w io.Writer)            { std.configure(func(l *Logger) { l.out = w }) }
func SetErrOutput(w io.Writer)         { std.configure(func(l *Logger) { l.errOut = w }) }
func SetStandardEnabled(e bool)        { std.SetStandardEnabled(e) }
func SetAuthEnabled(e bool)            { std.SetAuthEnabled(e) }
func SetReqEnabled(e bool)             { std.SetReqEnabled(e) }
func SetGetClientFunc(f GetClientFunc) { std.SetGetClientFunc(f) }
func SetExcludePaths(paths []string)   { std.SetExcludePaths(paths) }
func SetStandardTemplate(t string)     { std.SetStandardTemplate(t) }
func SetAuthTemplate(t string)         { std.SetAuthTemplate(t) }
func SetReqTemplate(t string)          { std.SetReqTemplate(t) }

// Print logs in the manner of fmt.Print.
func Print(v ...interface{}) {
	std.output(false, 2, fmt.Sprint(v...))
}

// Printf logs in the manner of fmt.Printf.
func Printf(format string, v ...interface{}) {
	std.output(false, 2, fmt.Sprintf(format, v...))
}

// Errorf logs to the error writer in the manner of fmt.Printf.
func Errorf(format string, v ...interface{}) {
	std.output(true, 2, fmt.Sprintf(format, v...))
}

// Fatalf is Errorf followed by os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	std.output(true, 2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Panic logs to the error writer, then panics with the message.
func Panic(v ...interface{}) {
	s := fmt.Sprint(v...)
	std.output(true, 2, s)
	panic(s)
}

// PrintAuthf writes an auth line through the process logger.
func PrintAuthf(user string, req *http.Request, status AuthStatus, format string, a ...interface{}) {
	std.PrintAuthf(user, req, status, format, a...)
}

// PrintReq writes an access line through the process logger.
func PrintReq(user, upstream string, req *http.Request, u url.URL, duration time.Duration, status int, size int) {
	std.PrintReq(user, upstream, req, u, duration, status, size)
}
