package index_test

import (
	"context"
	"errors"
	"hash/fnv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/logger"
	"github.com/deckmind/deckmind/pkg/vector"
	"github.com/deckmind/deckmind/pkg/vector/sqlitevec"
)

// stubEmbedder maps text deterministically into a small vector so the same
// text always lands on the same point.
type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := make([]float32, 4)
	for i := range v {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		v[i] = float32(h.Sum32()%1000) / 1000.0
	}
	return v, nil
}

func (s *stubEmbedder) Close() error { return nil }

// failingDriver errors on every operation.
type failingDriver struct{}

func (f *failingDriver) Insert(context.Context, vector.Record) (string, error) {
	return "", errors.New("backend down")
}

func (f *failingDriver) Query(context.Context, []float32, int) ([]vector.QueryResult, error) {
	return nil, errors.New("backend down")
}

func (f *failingDriver) DeleteByDocument(context.Context, string) error {
	return errors.New("backend down")
}

func (f *failingDriver) Close() error { return nil }

var _ = Describe("Index", func() {
	var (
		driver *sqlitevec.Driver
		ix     *index.Index
	)

	BeforeEach(func() {
		var err error
		driver, err = sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     ":memory:",
			Dimensions: 4,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		ix = index.New(&stubEmbedder{}, driver, logger.Nop())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("Write then Query", func() {
		It("returns the written record as the first hit for the same text", func() {
			recordID, err := ix.Write(context.Background(), "convolutional neural networks", index.Metadata{
				DocumentID: "doc-1",
				PageNumber: 4,
				Title:      "CNNs",
			})
			Expect(err).NotTo(HaveOccurred())

			hits, err := ix.Query(context.Background(), "convolutional neural networks", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).NotTo(BeEmpty())
			Expect(hits[0].RecordID).To(Equal(recordID))
			Expect(hits[0].Text).To(Equal("convolutional neural networks"))
			Expect(hits[0].PageNumber).To(Equal(4))
			Expect(hits[0].Title).To(Equal("CNNs"))
		})

		It("caps results at topK", func() {
			for _, text := range []string{"alpha", "beta", "gamma", "delta"} {
				_, err := ix.Write(context.Background(), text, index.Metadata{DocumentID: "doc-1"})
				Expect(err).NotTo(HaveOccurred())
			}

			hits, err := ix.Query(context.Background(), "alpha", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(hits)).To(BeNumerically("<=", 2))
		})
	})

	Describe("Query argument validation", func() {
		It("rejects topK of zero", func() {
			_, err := ix.Query(context.Background(), "anything", 0)
			Expect(err).To(MatchError(index.ErrInvalidArgument))
		})

		It("rejects negative topK", func() {
			_, err := ix.Query(context.Background(), "anything", -1)
			Expect(err).To(MatchError(index.ErrInvalidArgument))
		})
	})

	Describe("backend failure", func() {
		It("wraps write failures as ErrIndexUnavailable", func() {
			broken := index.New(&stubEmbedder{}, &failingDriver{}, logger.Nop())
			_, err := broken.Write(context.Background(), "text", index.Metadata{})
			Expect(err).To(MatchError(index.ErrIndexUnavailable))
		})

		It("wraps query failures as ErrIndexUnavailable", func() {
			broken := index.New(&stubEmbedder{}, &failingDriver{}, logger.Nop())
			_, err := broken.Query(context.Background(), "text", 3)
			Expect(err).To(MatchError(index.ErrIndexUnavailable))
		})

		It("wraps embedding failures as ErrIndexUnavailable", func() {
			broken := index.New(&stubEmbedder{err: errors.New("no embedder")}, driver, logger.Nop())
			_, err := broken.Write(context.Background(), "text", index.Metadata{})
			Expect(err).To(MatchError(index.ErrIndexUnavailable))
		})

		It("wraps delete failures as ErrIndexUnavailable", func() {
			broken := index.New(&stubEmbedder{}, &failingDriver{}, logger.Nop())
			Expect(broken.DeleteByDocument(context.Background(), "doc-1")).To(MatchError(index.ErrIndexUnavailable))
		})
	})

	Describe("DeleteByDocument", func() {
		It("removes a document's records from query results", func() {
			_, err := ix.Write(context.Background(), "to be deleted", index.Metadata{DocumentID: "doc-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(ix.DeleteByDocument(context.Background(), "doc-1")).To(Succeed())

			hits, err := ix.Query(context.Background(), "to be deleted", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(BeEmpty())
		})
	})
})
