// Command sigmatrace is a small diagnostic CLI over this module's
// prove/verify/tree-inspection operations: a single JSON request read from
// stdin produces a single JSON response on stdout (op dispatch mirrors the
// teacher's JSON-over-stdin CLI), or, with -batch, a newline-delimited
// stream of requests is processed one per line, each under its own
// session handle so a long-running batch can be traced per-request.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"ergotree.dev/sigmachain/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sigmatrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	batch := fs.Bool("batch", false, "read newline-delimited requests from stdin instead of a single JSON request")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := newLogger(*logLevel)
	sessions := store.NewSessions()

	if !*batch {
		var req Request
		if err := json.NewDecoder(stdin).Decode(&req); err != nil {
			writeResp(stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
			return 1
		}
		id := sessions.Open()
		defer func() { _ = sessions.Close(id) }()
		resp := dispatch(req, id, log)
		writeResp(stdout, resp)
		if !resp.Ok {
			return 1
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	exitCode := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeResp(stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
			exitCode = 1
			continue
		}
		id := sessions.Open()
		resp := dispatch(req, id, log)
		if err := sessions.Close(id); err != nil {
			log.Warn().Err(err).Msg("session close")
		}
		writeResp(stdout, resp)
		if !resp.Ok {
			exitCode = 1
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("reading batch input")
		return 1
	}
	log.Info().Int("sessions_open", sessions.Len()).Msg("batch complete")
	return exitCode
}
