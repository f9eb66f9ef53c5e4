package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/kaidan/internal/answer"
	"github.com/jackzampolin/kaidan/internal/api"
	"github.com/jackzampolin/kaidan/internal/chat"
	"github.com/jackzampolin/kaidan/internal/svcctx"
)

// ChatRequest is the request body for asking a question.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatEndpoint handles POST /api/chat.
type ChatEndpoint struct{}

func (e *ChatEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/chat", e.handler
}

// handler godoc
//
//	@Summary		Ask a question
//	@Description	Answers a free-text question grounded in digitized library excerpts, with inline citations
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChatRequest	true	"Question and optional model override"
//	@Success		200		{object}	chat.Response
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/chat [post]
func (e *ChatEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	svc := svcctx.ChatFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "chat service not initialized", "")
		return
	}

	resp, err := svc.Handle(r.Context(), chat.Request{Message: req.Message, Model: req.Model})
	if err != nil {
		status := http.StatusInternalServerError
		msg, details := "request failed", err.Error()

		var chatErr *chat.Error
		if errors.As(err, &chatErr) {
			msg, details = chatErr.Message, chatErr.Details
			if chatErr.Kind == chat.KindQuota {
				status = http.StatusTooManyRequests
			}
		}
		writeError(w, status, msg, details)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ChatEndpoint) Command(getServerURL func() string) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask a question against the digitized library",
		Long: `Ask a free-text question. The answer is grounded in passages from
digitized books and printed with its sources.

Examples:
  kaidan api chat "江戸時代の化け猫の話を教えて"
  kaidan api chat "おまかせで何か面白い話を" --model gpt-4o-mini`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp chat.Response
			if err := client.Post(cmd.Context(), "/api/chat", ChatRequest{
				Message: args[0],
				Model:   model,
			}, &resp); err != nil {
				return err
			}

			printReply(cmd, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Answer model override (e.g. gpt-4o-mini)")
	return cmd
}

// printReply renders the reply with citation markers resolved to [n] labels
// and a numbered source list underneath.
func printReply(cmd *cobra.Command, resp chat.Response) {
	segments := answer.ResolveCitations(resp.Reply, resp.Sources)
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
		if seg.Source != nil {
			for i, src := range resp.Sources {
				if src == *seg.Source {
					fmt.Fprintf(&sb, "[%d]", i+1)
					break
				}
			}
		}
	}
	cmd.Println(sb.String())

	if len(resp.Sources) > 0 {
		cmd.Println()
		for i, src := range resp.Sources {
			cmd.Printf("[%d] %s (コマ%s) %s\n", i+1, src.Title, src.PageLabel, src.Link)
		}
	}
}
