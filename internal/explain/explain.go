// Package explain turns topic selections and chat messages into requests for a
// remote text-generation service.
//
// Failures never escape: a missing credential, a transport error or an empty
// answer is replaced by a fixed human-readable fallback.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/gpunexus/internal/log"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of a conversation.
type Turn struct {
	Role Role
	Text string
}

// Generator is the remote text-generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, system string, history []Turn, message string) (string, error)
}

// Fallback texts.
const (
	ExplainNoCredential = "API Key 未配置，无法获取解释。"
	ExplainFailed       = "连接 AI 知识库时出错。"
	ExplainEmpty        = "未能生成解释。"
	ChatNoCredential    = "缺少 API Key。"
	ChatFailed          = "我现在无法处理该请求，请稍后再试。"
	ChatEmpty           = "我没听清，请再说一遍。"
)

// SystemInstruction is the persona given to every chat.
const SystemInstruction = "你叫 GPU-GPT，是一个专门负责教授 GPU 架构、CUDA/OpenCL 概念和图形渲染管线的中文助手。你的回答需要技术性强但通俗易懂。如果需要，可以使用简单的代码片段 (GLSL/C++)。"

// ExplainPrompt builds the one-shot prompt used for topic explanations.
func ExplainPrompt(topic, context string) string {
	var b strings.Builder
	b.WriteString("你是一位资深的 GPU 工程师和计算机科学教授。\n")
	fmt.Fprintf(&b, "请结合 GPU 架构和图形编程的背景，用中文解释 \"%s\" 的概念。\n\n", topic)
	fmt.Fprintf(&b, "当前应用上下文：%s\n\n", context)
	b.WriteString("要求：\n")
	b.WriteString("1. 保持简洁（150字以内）。\n")
	b.WriteString("2. 如果概念复杂，请使用类比。\n")
	b.WriteString("3. 如果相关，请提及它与 CPU 的区别。\n")
	b.WriteString("4. 使用 Markdown 格式。\n")
	return b.String()
}

type RequesterConfig struct {
	// APIKey is the credential for the remote service. When empty every call
	// returns its fallback without touching Generator.
	APIKey    string
	Generator Generator
	Logger    log.Logger
}

func (c *RequesterConfig) defaults() error {
	if c.APIKey != "" && c.Generator == nil {
		return fmt.Errorf("generator is required when an api key is set")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"component": "explain"})
	return nil
}

// Requester produces explanations and chat replies.
type Requester struct {
	apiKey    string
	generator Generator
	logger    log.Logger
}

func NewRequester(cfg RequesterConfig) (*Requester, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Requester{
		apiKey:    cfg.APIKey,
		generator: cfg.Generator,
		logger:    cfg.Logger,
	}, nil
}

// Configured reports whether a credential is present.
func (r *Requester) Configured() bool { return r.apiKey != "" }

// ExplainTopic asks for a short explanation of topic in the given context.
func (r *Requester) ExplainTopic(ctx context.Context, topic, contextDescription string) string {
	if !r.Configured() {
		return ExplainNoCredential
	}

	r.logger.Debugf("explaining %q", topic)
	text, err := r.generator.Generate(ctx, ExplainPrompt(topic, contextDescription))
	if err != nil {
		r.logger.Errorf("explanation for %q failed: %v", topic, err)
		return ExplainFailed
	}
	if strings.TrimSpace(text) == "" {
		return ExplainEmpty
	}
	return text
}

// Converse sends message after the prior turns and returns the reply.
func (r *Requester) Converse(ctx context.Context, message string, history []Turn) string {
	if !r.Configured() {
		return ChatNoCredential
	}

	r.logger.Debugf("chat message with %d prior turns", len(history))
	text, err := r.generator.Chat(ctx, SystemInstruction, history, message)
	if err != nil {
		r.logger.Errorf("chat failed: %v", err)
		return ChatFailed
	}
	if strings.TrimSpace(text) == "" {
		return ChatEmpty
	}
	return text
}
