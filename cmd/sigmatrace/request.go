package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/sigma"
	"ergotree.dev/sigmachain/store"
)

// Request/Response mirror the op-dispatch CLI contract, with the JSON
// fields specialized to this module's proving/verifying/tree-inspection
// domain rather than a transaction/block one.
type Request struct {
	Op         string `json:"op"`
	SecretHex  string `json:"secret_hex,omitempty"`
	PubKeyHex  string `json:"pubkey_hex,omitempty"`
	ProofHex   string `json:"proof_hex,omitempty"`
	MessageHex string `json:"message_hex,omitempty"`
	TreeHex    string `json:"tree_hex,omitempty"`
}

type Response struct {
	Ok              bool   `json:"ok"`
	Err             string `json:"err,omitempty"`
	ProofHex        string `json:"proof_hex,omitempty"`
	PubKeyHex       string `json:"pubkey_hex,omitempty"`
	Valid           bool   `json:"valid,omitempty"`
	Version         byte   `json:"version,omitempty"`
	HasSize         bool   `json:"has_size,omitempty"`
	HasSegregation  bool   `json:"has_segregation,omitempty"`
	TemplateHashHex string `json:"template_hash_hex,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

// dispatch runs one request against an open session's ConstantStore (unused
// by the ops below today, but threaded through so future tree-parameterized
// ops share the segregated-constants state the session handle stands for)
// and logs a structured summary of what happened.
func dispatch(req Request, sessionId uuid.UUID, log zerolog.Logger) Response {
	logEvt := log.Info().Str("op", req.Op).Str("session", sessionId.String())

	resp, err := dispatchOp(req)
	if err != nil {
		logEvt.Err(err).Msg("request failed")
		return Response{Ok: false, Err: err.Error()}
	}
	logEvt.Msg("request ok")
	resp.Ok = true
	return resp
}

func dispatchOp(req Request) (Response, error) {
	switch req.Op {
	case "prove_dlog":
		return proveDlog(req)
	case "verify_dlog":
		return verifyDlog(req)
	case "parse_tree":
		return parseTree(req)
	default:
		return Response{}, fmt.Errorf("unknown op %q", req.Op)
	}
}

func proveDlog(req Request) (Response, error) {
	secretBytes, err := hex.DecodeString(req.SecretHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad secret_hex: %w", err)
	}
	messageBytes, err := hex.DecodeString(req.MessageHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad message_hex: %w", err)
	}
	w := ecc.ScalarFromBytes(secretBytes)
	g := ecc.Generator()
	pk := g.Exponentiate(w.Bytes())
	prop := sigma.NewProveDlog(pk)
	proof, err := sigma.Prove(prop, []sigma.Secret{sigma.NewDlogSecret(g, w)}, sigma.NewHintsBag(), messageBytes)
	if err != nil {
		return Response{}, fmt.Errorf("prove: %w", err)
	}
	return Response{
		ProofHex:  hex.EncodeToString(proof),
		PubKeyHex: hex.EncodeToString(pk.SerializeCompressed()),
	}, nil
}

func verifyDlog(req Request) (Response, error) {
	pkBytes, err := hex.DecodeString(req.PubKeyHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad pubkey_hex: %w", err)
	}
	proofBytes, err := hex.DecodeString(req.ProofHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad proof_hex: %w", err)
	}
	messageBytes, err := hex.DecodeString(req.MessageHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad message_hex: %w", err)
	}
	pk, err := ecc.ParseCompressed(pkBytes)
	if err != nil {
		return Response{}, fmt.Errorf("bad pubkey point: %w", err)
	}
	ok, err := sigma.Verify(sigma.NewProveDlog(pk), proofBytes, messageBytes)
	if err != nil {
		return Response{}, fmt.Errorf("verify: %w", err)
	}
	return Response{Valid: ok}, nil
}

func parseTree(req Request) (Response, error) {
	treeBytes, err := hex.DecodeString(req.TreeHex)
	if err != nil {
		return Response{}, fmt.Errorf("bad tree_hex: %w", err)
	}
	tree, err := ergotree.Parse(treeBytes)
	if err != nil {
		return Response{}, fmt.Errorf("parse: %w", err)
	}
	hash, err := store.TemplateHash(tree)
	if err != nil {
		return Response{}, fmt.Errorf("template hash: %w", err)
	}
	return Response{
		Version:         tree.Version(),
		HasSize:         tree.HasSize(),
		HasSegregation:  tree.HasSegregation(),
		TemplateHashHex: hash.String(),
	}, nil
}
