// Package generate asks a generative model for a mind map skeleton on a
// topic and turns the answer into a GraphDocument.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/config"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/google/uuid"
)

// Generator builds a document for a topic. The result has fresh node and
// connection ids but no document id or owner.
type Generator interface {
	Generate(ctx context.Context, topic string) (*models.GraphDocument, error)
}

const maxResponseBytes = 4 << 20

// GeminiClient calls the generateContent endpoint of the Generative
// Language API.
type GeminiClient struct {
	cfg        config.GenAIConfig
	httpClient *http.Client
	newID      func() string
}

// NewGeminiClient uses httpClient, or a client with a 60s timeout when nil.
func NewGeminiClient(cfg config.GenAIConfig, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &GeminiClient{cfg: cfg, httpClient: httpClient, newID: uuid.NewString}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// aiMindmap is the JSON shape the prompt asks for.
type aiMindmap struct {
	Title string `json:"title"`
	Nodes []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Color       string  `json:"color"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
	} `json:"nodes"`
	Connections []struct {
		SourceTitle string `json:"sourceTitle"`
		TargetTitle string `json:"targetTitle"`
	} `json:"connections"`
}

func prompt(topic string) string {
	return fmt.Sprintf("Create a mind map for the topic %q. Reply with JSON only, shaped as "+
		`{"title": string, "nodes": [{"title", "description", "color" (RGB hex), "x", "y"}], `+
		`"connections": [{"sourceTitle", "targetTitle"}]}.`, topic)
}

func (c *GeminiClient) Generate(ctx context.Context, topic string) (*models.GraphDocument, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w: api key is not set", common.ErrGenerationFailed, common.ErrNotConfigured)
	}

	text, err := c.call(ctx, prompt(topic))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}

	var ai aiMindmap
	if err := json.Unmarshal([]byte(stripFences(text)), &ai); err != nil {
		return nil, fmt.Errorf("%w: model reply is not a mind map: %v", common.ErrGenerationFailed, err)
	}

	return c.toDocument(topic, &ai), nil
}

func (c *GeminiClient) call(ctx context.Context, promptText string) (string, error) {
	var body generateRequest
	body.Contents = []content{{Role: "user", Parts: []part{{Text: promptText}}}}
	body.GenerationConfig.ResponseMimeType = "application/json"

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	endpoint, err := url.JoinPath(c.cfg.Endpoint, "v1beta", "models", c.cfg.Model+":generateContent")
	if err != nil {
		return "", fmt.Errorf("bad endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}
	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

func (c *GeminiClient) toDocument(topic string, ai *aiMindmap) *models.GraphDocument {
	title := strings.TrimSpace(ai.Title)
	if title == "" {
		title = "Mindmap about " + topic
	}
	doc := &models.GraphDocument{
		Title:       title,
		Nodes:       make([]models.Node, 0, len(ai.Nodes)),
		Connections: []models.Connection{},
	}

	byTitle := make(map[string]string, len(ai.Nodes))
	for _, an := range ai.Nodes {
		n := models.NewNode(c.newID(), an.Title, an.X, an.Y)
		if an.Description != "" {
			d := an.Description
			n.Description = &d
		}
		if color, err := models.ParseColor(an.Color); err == nil && an.Color != "" {
			n.BackgroundColor = color
		}
		doc.Nodes = append(doc.Nodes, n)
		byTitle[an.Title] = n.ID
	}

	for _, ac := range ai.Connections {
		src, ok1 := byTitle[ac.SourceTitle]
		dst, ok2 := byTitle[ac.TargetTitle]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		doc.Connections = append(doc.Connections, models.NewConnection(c.newID(), src, dst))
	}
	return doc
}

// stripFences removes a markdown code fence around the reply, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
