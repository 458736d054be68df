// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// errorResponse is the JSONL error shape emitted for a failed turn. The
// client keys on the "error" field to distinguish failures from replies.
type errorResponse struct {
	Error string `json:"error"`
}

// RunLoop reads one JSON Request per line from r and writes one JSON
// Response (or an error object) per line to w — the helper-process
// protocol the desktop client speaks. Invalid lines and failed turns are
// reported in-band and the loop keeps going; only a read or write failure
// ends it.
func RunLoop(ctx context.Context, r io.Reader, w io.Writer, pipeline *Pipeline) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if err := enc.Encode(errorResponse{Error: "invalid_request: " + err.Error()}); err != nil {
				return err
			}
			continue
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := pipeline.Handle(ctx, req)
		if err != nil {
			slog.Warn("chat turn failed", "session_id", req.SessionID, "error", err)
			if err := enc.Encode(errorResponse{Error: "helper_failure: " + err.Error()}); err != nil {
				return err
			}
			continue
		}

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
