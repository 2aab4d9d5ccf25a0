package augment

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/llm"
	"github.com/deckmind/deckmind/pkg/logger"
)

// stubChatter records the last request and returns a canned reply or error.
type stubChatter struct {
	lastReq *llm.ChatRequest
	reply   string
	err     error
}

func (s *stubChatter) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{
		Model:   req.Model,
		Message: llm.NewTextMessage("assistant", s.reply),
	}, nil
}

var _ = Describe("Client.Augment", func() {
	var (
		chatter *stubChatter
		client  *Client
	)

	BeforeEach(func() {
		chatter = &stubChatter{}
		client = NewClient(chatter, Config{Model: "gpt-4-turbo-preview"}, logger.Nop())
	})

	Context("when the model returns structured output", func() {
		BeforeEach(func() {
			chatter.reply = `{"extended_content": "Attention lets a model weigh inputs.", "sections": ["Background", "Applications"]}`
		})

		It("uses the parsed fields", func() {
			result := client.Augment(context.Background(), "attention mechanisms", nil, TemplateDefault)

			Expect(result.Structured).To(BeTrue())
			Expect(result.Degraded).To(BeFalse())
			Expect(result.ExtendedContent).To(Equal("Attention lets a model weigh inputs."))
			Expect(result.Sections).To(Equal([]string{"Background", "Applications"}))
			Expect(result.ModelUsed).To(Equal("gpt-4-turbo-preview"))
			Expect(result.TemplateType).To(Equal(TemplateDefault))
		})

		It("requests JSON mode with the expected sampling parameters", func() {
			client.Augment(context.Background(), "attention mechanisms", nil, TemplateDefault)

			Expect(chatter.lastReq.JSONMode).To(BeTrue())
			Expect(chatter.lastReq.Temperature).To(HaveValue(Equal(0.7)))
			Expect(chatter.lastReq.MaxTokens).To(HaveValue(Equal(1500)))
			Expect(chatter.lastReq.Messages).To(HaveLen(2))
			Expect(chatter.lastReq.Messages[0].Role).To(Equal("system"))
			Expect(chatter.lastReq.Messages[1].Role).To(Equal("user"))
		})
	})

	Context("when the model returns unparseable output", func() {
		BeforeEach(func() {
			chatter.reply = "Attention lets a model weigh inputs, plain prose with no JSON."
		})

		It("wraps the raw text as an unstructured result", func() {
			result := client.Augment(context.Background(), "attention mechanisms", nil, TemplateDefault)

			Expect(result.Structured).To(BeFalse())
			Expect(result.Degraded).To(BeFalse())
			Expect(result.ExtendedContent).To(Equal(chatter.reply))
			Expect(result.Sections).To(Equal([]string{"Extended content"}))
		})
	})

	Context("when the model call fails", func() {
		BeforeEach(func() {
			chatter.err = errors.New("429 too many requests")
		})

		It("degrades with the apology text and failure detail", func() {
			result := client.Augment(context.Background(), "attention mechanisms", nil, TemplateDefault)

			Expect(result.Degraded).To(BeTrue())
			Expect(result.ExtendedContent).To(Equal(degradedContent))
			Expect(result.Sections).To(Equal([]string{degradedSection}))
			Expect(result.ErrorDetail).To(Equal("429 too many requests"))
		})
	})

	Context("template selection", func() {
		BeforeEach(func() {
			chatter.reply = `{"extended_content": "ok"}`
		})

		It("falls back to the default template for unknown types", func() {
			known := client.Augment(context.Background(), "attention", nil, TemplateDefault)
			unknownPrompt := func() string {
				client.Augment(context.Background(), "attention", nil, TemplateType("pirate"))
				return chatter.lastReq.Messages[1].Content
			}()

			Expect(known.TemplateType).To(Equal(TemplateDefault))
			client.Augment(context.Background(), "attention", nil, TemplateDefault)
			Expect(chatter.lastReq.Messages[1].Content).To(Equal(unknownPrompt))
		})

		It("reports the resolved template type on fallback", func() {
			result := client.Augment(context.Background(), "attention", nil, TemplateType("pirate"))

			Expect(result.TemplateType).To(Equal(TemplateDefault))
		})

		It("uses distinct prompts for technical and simple", func() {
			client.Augment(context.Background(), "attention", nil, TemplateTechnical)
			technical := chatter.lastReq.Messages[1].Content

			client.Augment(context.Background(), "attention", nil, TemplateSimple)
			simple := chatter.lastReq.Messages[1].Content

			Expect(technical).NotTo(Equal(simple))
		})
	})

	Context("prompt bounds", func() {
		BeforeEach(func() {
			chatter.reply = `{"extended_content": "ok"}`
		})

		It("derives the title from the first 50 characters", func() {
			content := strings.Repeat("x", 80)
			client.Augment(context.Background(), content, nil, TemplateDefault)

			prompt := chatter.lastReq.Messages[1].Content
			Expect(prompt).To(ContainSubstring(strings.Repeat("x", 50) + "..."))
			Expect(prompt).NotTo(ContainSubstring(strings.Repeat("x", 51) + "..."))
		})

		It("truncates content to 1000 characters", func() {
			content := strings.Repeat("y", 1500)
			client.Augment(context.Background(), content, nil, TemplateDefault)

			prompt := chatter.lastReq.Messages[1].Content
			Expect(prompt).To(ContainSubstring(strings.Repeat("y", 1000)))
			Expect(prompt).NotTo(ContainSubstring(strings.Repeat("y", 1001)))
		})

		It("includes at most three context snippets, each bounded", func() {
			hits := []index.Hit{
				{Text: strings.Repeat("a", 300)},
				{Text: "second snippet"},
				{Text: "third snippet"},
				{Text: "fourth snippet"},
			}
			client.Augment(context.Background(), "attention", hits, TemplateDefault)

			prompt := chatter.lastReq.Messages[1].Content
			Expect(prompt).To(ContainSubstring("Related context:"))
			Expect(prompt).To(ContainSubstring("1. " + strings.Repeat("a", 200) + "..."))
			Expect(prompt).NotTo(ContainSubstring(strings.Repeat("a", 201)))
			Expect(prompt).To(ContainSubstring("3. third snippet"))
			Expect(prompt).NotTo(ContainSubstring("fourth snippet"))
		})

		It("omits the context block when there are no hits", func() {
			client.Augment(context.Background(), "attention", nil, TemplateDefault)

			Expect(chatter.lastReq.Messages[1].Content).NotTo(ContainSubstring("Related context:"))
		})
	})
})

var _ = Describe("Client.GenerateQuestions", func() {
	var (
		chatter *stubChatter
		client  *Client
	)

	BeforeEach(func() {
		chatter = &stubChatter{}
		client = NewClient(chatter, Config{Model: "gpt-4-turbo-preview"}, logger.Nop())
	})

	It("parses the questions payload", func() {
		chatter.reply = `{"questions": [
			{"question": "What does attention compute?", "options": ["weights", "gradients"], "answer": "weights", "explanation": "Attention weighs inputs."}
		]}`

		questions := client.GenerateQuestions(context.Background(), "attention mechanisms", "multiple_choice")

		Expect(questions).To(HaveLen(1))
		Expect(questions[0].Question).To(Equal("What does attention compute?"))
		Expect(questions[0].Options).To(Equal([]string{"weights", "gradients"}))
		Expect(questions[0].Answer).To(Equal("weights"))
		Expect(questions[0].Error).To(BeEmpty())
		Expect(chatter.lastReq.Temperature).To(HaveValue(Equal(0.5)))
		Expect(chatter.lastReq.JSONMode).To(BeTrue())
	})

	It("returns a single marker record when the call fails", func() {
		chatter.err = errors.New("connection refused")

		questions := client.GenerateQuestions(context.Background(), "attention", "multiple_choice")

		Expect(questions).To(HaveLen(1))
		Expect(questions[0].Error).To(Equal("connection refused"))
	})

	It("returns a single marker record when the payload is unparseable", func() {
		chatter.reply = "not json"

		questions := client.GenerateQuestions(context.Background(), "attention", "multiple_choice")

		Expect(questions).To(HaveLen(1))
		Expect(questions[0].Error).NotTo(BeEmpty())
	})
})

var _ = Describe("Client.CheckFacts", func() {
	var (
		chatter *stubChatter
		client  *Client
	)

	BeforeEach(func() {
		chatter = &stubChatter{}
		client = NewClient(chatter, Config{Model: "gpt-4-turbo-preview"}, logger.Nop())
	})

	It("parses the checks payload", func() {
		chatter.reply = `{"checks": [
			{"statement": "The sky is green.", "accuracy": "incorrect", "confidence": "high", "evidence": "Rayleigh scattering makes it blue."}
		]}`

		checks, err := client.CheckFacts(context.Background(), []string{"The sky is green."})

		Expect(err).NotTo(HaveOccurred())
		Expect(checks).To(HaveLen(1))
		Expect(checks[0].Accuracy).To(Equal(AccuracyIncorrect))
		Expect(checks[0].Confidence).To(Equal(ConfidenceHigh))
		Expect(chatter.lastReq.Temperature).To(HaveValue(Equal(0.3)))
	})

	It("numbers the statements in the prompt", func() {
		chatter.reply = `{"checks": []}`

		_, err := client.CheckFacts(context.Background(), []string{"first", "second"})

		Expect(err).NotTo(HaveOccurred())
		prompt := chatter.lastReq.Messages[0].Content
		Expect(prompt).To(ContainSubstring("1. first"))
		Expect(prompt).To(ContainSubstring("2. second"))
	})

	It("propagates call failures", func() {
		chatter.err = errors.New("quota exceeded")

		_, err := client.CheckFacts(context.Background(), []string{"anything"})

		Expect(err).To(MatchError(ContainSubstring("quota exceeded")))
	})

	It("propagates parse failures", func() {
		chatter.reply = "not json"

		_, err := client.CheckFacts(context.Background(), []string{"anything"})

		Expect(err).To(MatchError(ContainSubstring("parsing fact check response")))
	})
})
