package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/client"
)

// entry is one TOML record of a request and its outcome.
type entry struct {
	Request  entryRequest   `toml:"request"`
	Response *entryResponse `toml:"response,omitempty"`
	Error    *entryError    `toml:"error,omitempty"`
}

type entryRequest struct {
	Timestamp time.Time      `toml:"timestamp"`
	Query     string         `toml:"query"`
	Context   map[string]any `toml:"context,omitempty"`
}

type entryResponse struct {
	Command     string `toml:"command"`
	Explanation string `toml:"explanation,omitempty"`
}

type entryError struct {
	Status  int    `toml:"status,omitempty"`
	Message string `toml:"message"`
}

func newEntry(now time.Time, req *terminai.CommandRequest, resp *terminai.CommandResponse, err error) entry {
	e := entry{
		Request: entryRequest{
			Timestamp: now.Truncate(time.Second),
			Query:     req.Query,
			Context:   req.Context,
		},
	}
	if err != nil {
		e.Error = &entryError{Message: err.Error()}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			e.Error.Status = apiErr.StatusCode
			e.Error.Message = apiErr.Detail
		}
		return e
	}
	if resp != nil {
		e.Response = &entryResponse{Command: resp.Command, Explanation: resp.Explanation}
	}
	return e
}

// writeEntry writes a separator comment followed by the TOML record.
func writeEntry(w io.Writer, e entry) error {
	fmt.Fprintf(w, "# %s\n\n", strings.Repeat("═", 60))
	if err := toml.NewEncoder(w).Encode(e); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
