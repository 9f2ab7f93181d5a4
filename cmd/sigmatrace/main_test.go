package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/sigmatype"
)

func TestRunProveThenVerifyDlogRoundTrip(t *testing.T) {
	w, err := ecc.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	message := hex.EncodeToString([]byte("sigmatrace test message"))

	proveReq := `{"op":"prove_dlog","secret_hex":"` + hex.EncodeToString(w.Bytes()) + `","message_hex":"` + message + `"}`
	var proveOut, proveErr bytes.Buffer
	code := run(nil, strings.NewReader(proveReq), &proveOut, &proveErr)
	if code != 0 {
		t.Fatalf("prove_dlog exit=%d stderr=%s", code, proveErr.String())
	}
	var proveResp Response
	if err := json.Unmarshal(proveOut.Bytes(), &proveResp); err != nil {
		t.Fatalf("decode prove response: %v", err)
	}
	if !proveResp.Ok || proveResp.ProofHex == "" || proveResp.PubKeyHex == "" {
		t.Fatalf("unexpected prove response: %+v", proveResp)
	}

	verifyReq := `{"op":"verify_dlog","pubkey_hex":"` + proveResp.PubKeyHex + `","proof_hex":"` + proveResp.ProofHex + `","message_hex":"` + message + `"}`
	var verifyOut, verifyErr bytes.Buffer
	code = run(nil, strings.NewReader(verifyReq), &verifyOut, &verifyErr)
	if code != 0 {
		t.Fatalf("verify_dlog exit=%d stderr=%s", code, verifyErr.String())
	}
	var verifyResp Response
	if err := json.Unmarshal(verifyOut.Bytes(), &verifyResp); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if !verifyResp.Ok || !verifyResp.Valid {
		t.Fatalf("expected valid proof, got %+v", verifyResp)
	}
}

func TestRunParseTree(t *testing.T) {
	expr, err := ast.NewCreateProveDlog(ast.NewConst(sigmatype.NewGroupElement(ecc.Generator())))
	if err != nil {
		t.Fatalf("NewCreateProveDlog: %v", err)
	}
	tree, err := ergotree.FromExpr(0, false, true, expr)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	req := `{"op":"parse_tree","tree_hex":"` + hex.EncodeToString(tree.Bytes()) + `"}`

	var out, errOut bytes.Buffer
	code := run(nil, strings.NewReader(req), &out, &errOut)
	if code != 0 {
		t.Fatalf("parse_tree exit=%d stderr=%s", code, errOut.String())
	}
	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Ok || resp.TemplateHashHex == "" {
		t.Fatalf("unexpected parse_tree response: %+v", resp)
	}
}

func TestRunBatchModeProcessesEachLine(t *testing.T) {
	lines := strings.Join([]string{
		`{"op":"unknown_op"}`,
		`{"op":"parse_tree","tree_hex":"00"}`,
	}, "\n")

	var out, errOut bytes.Buffer
	code := run([]string{"-batch"}, strings.NewReader(lines), &out, &errOut)
	if code != 1 {
		t.Fatalf("expected nonzero exit for a batch containing a failing op, got %d", code)
	}
	responses := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d: %q", len(responses), out.String())
	}
	var first Response
	if err := json.Unmarshal([]byte(responses[0]), &first); err != nil {
		t.Fatalf("decode first response: %v", err)
	}
	if first.Ok {
		t.Fatalf("expected first response to fail for an unknown op")
	}
}
