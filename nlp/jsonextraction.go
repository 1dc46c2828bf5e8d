package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	datautils "github.com/soumitsalman/data-utils"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
)

const (
	_TEMPLATE = "CONTEXT:\n{{.context}}\n\n" +
		"OUTPUT FORMAT:\nThe output MUST be a single json object wrapped in markdown code format according to the json schema below.\n```json\n%s\n```\n\n" + // 1st %s is for schema
		"SAMPLE OUTPUT:\nHere is a sample output\n```json\n%s\n```\n\n" + // 2nd %s is for sample value
		"TASK:\nFollow the instructions defined in CONTEXT and produce output according to OUTPUT FORMAT from the input below. Return ONLY the json.\n\n" +
		"INPUT:\n{{.input_text}}"

	_DEFAULT_OUTPUT_KEY = "value"
)

type JsonValueExtraction struct {
	llm_chain *chains.LLMChain
}

func NewJsonValueExtraction[T any](llm llms.Model, sample_value T) *JsonValueExtraction {
	parser := NewJsonOutputParser(sample_value)

	extraction_prompt := prompts.NewPromptTemplate(
		fmt.Sprintf(
			_TEMPLATE,
			parser.GetFormatInstructions(),       // output schema
			datautils.ToJsonString(sample_value), // sample output
		),
		[]string{"context", "input_text"},
	)

	internal_chain := chains.NewLLMChain(llm, extraction_prompt, chains.WithTemperature(0))
	internal_chain.OutputParser = parser
	internal_chain.OutputKey = _DEFAULT_OUTPUT_KEY

	return &JsonValueExtraction{internal_chain}
}

func (c JsonValueExtraction) Call(ctx context.Context, values map[string]any, options ...chains.ChainCallOption) (map[string]any, error) {
	return c.llm_chain.Call(ctx, values, options...)
}

// GetMemory returns the memory.
func (c JsonValueExtraction) GetMemory() schema.Memory {
	return c.llm_chain.Memory
}

// GetInputKeys returns the expected input keys.
func (c JsonValueExtraction) GetInputKeys() []string {
	return append([]string{}, c.llm_chain.Prompt.GetInputVariables()...)
}

// GetOutputKeys returns the output keys the chain will return.
func (c JsonValueExtraction) GetOutputKeys() []string {
	return []string{c.llm_chain.OutputKey}
}

type ModelOutputError string

func (err ModelOutputError) Error() string {
	return string(err)
}

// ErrUnparseableOutput marks responses where the model returned something
// other than the requested json shape. Callers distinguish it from transport
// failures to pick a degraded default instead of failing the request.
const ErrUnparseableOutput = ModelOutputError("model output is not parseable json")

// JsonOutputParser parses the model response into T. Models decorate their
// json with markdown fences and chatter no matter how hard the prompt says
// not to, so the parser scoops out the outermost json object before
// unmarshalling.
type JsonOutputParser[T any] struct {
	format_instructions string
}

func NewJsonOutputParser[T any](sample_value T) *JsonOutputParser[T] {
	raw_schema, _ := json.Marshal(jsonschema.Reflect(sample_value))
	return &JsonOutputParser[T]{format_instructions: string(raw_schema)}
}

func (p *JsonOutputParser[T]) GetFormatInstructions() string {
	return p.format_instructions
}

func (p *JsonOutputParser[T]) Parse(text string) (any, error) {
	var value T
	if err := json.Unmarshal([]byte(ExtractJsonBlock(text)), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableOutput, err)
	}
	return value, nil
}

func (p *JsonOutputParser[T]) ParseWithPrompt(text string, _ schema.PromptValue) (any, error) {
	return p.Parse(text)
}

func (p *JsonOutputParser[T]) Type() string {
	return "json_value_parser"
}

// ExtractJsonBlock strips markdown fences and any explanation text around the
// outermost json object. Returns the input unchanged when no object is found.
func ExtractJsonBlock(text string) string {
	text = strings.TrimSpace(text)
	// peel off a ```json ... ``` fence if there is one
	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		body = strings.TrimPrefix(body, "json")
		if end := strings.LastIndex(body, "```"); end >= 0 {
			text = strings.TrimSpace(body[:end])
		}
	}
	// explanation text before or after the object
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
