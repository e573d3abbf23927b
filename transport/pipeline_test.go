package transport

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/bartolsthoorn/transportlp/lp"
)

var _ = Describe("Pipeline", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockRunRecorder
		dir      string
		output   string
		logged   *bytes.Buffer
		pipeline *Pipeline
	)

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockRunRecorder(mockCtrl)
		dir = GinkgoT().TempDir()
		output = filepath.Join(dir, "output.txt")
		logged = &bytes.Buffer{}

		logger := log.New(logged, "", 0)
		pipeline = &Pipeline{
			Solver:   NewSolver(WithLogger(logger)),
			Writer:   NewWriter(WithReportLogger(logger)),
			Recorder: recorder,
			Logger:   logger,
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write the plan of a balanced instance", func() {
		input := writeFile("input.txt", "2 2\n10 10\n10 10\n1 5\n5 1\n")
		recorder.EXPECT().
			RecordRun(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, run RunSummary) error {
				Expect(run.Solved).To(BeTrue())
				Expect(run.Status).To(Equal("Optimal"))
				Expect(run.Backend).To(Equal(lp.SimplexBackendName))
				Expect(run.Cost).To(Equal(20))
				Expect(run.Sources).To(Equal(2))
				Expect(run.Destinations).To(Equal(2))
				Expect(run.InputPath).To(Equal(input))
				Expect(run.Shipments).To(HaveLen(2))
				return nil
			})

		res, err := pipeline.Run(context.Background(), input, output)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allocation.Shipments).To(HaveLen(2))
		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(
			"Política de transporte:\n" +
				"Transporte de 10 unidade(s) da origem 1 para o destino 1.\n" +
				"Transporte de 10 unidade(s) da origem 2 para o destino 2.\n"))
		Expect(logged.String()).To(ContainSubstring("Solução Ótima:"))
	})

	It("should balance excess supply with a dummy destination", func() {
		input := writeFile("input.txt", "1 2\n10\n4 4\n1 2\n")
		recorder.EXPECT().RecordRun(gomock.Any(), gomock.Any()).Return(nil)

		res, err := pipeline.Run(context.Background(), input, output)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Instance.DummyDestination).To(BeTrue())
		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(
			"Política de transporte:\n" +
				"Transporte de 4 unidade(s) da origem 1 para o destino 1.\n" +
				"Transporte de 4 unidade(s) da origem 1 para o destino 2.\n" +
				"Transporte de 2 unidade(s) da origem 1 para o destino 3.\n"))
		Expect(logged.String()).To(ContainSubstring("added dummy destination 3"))
	})

	It("should balance excess demand with a dummy source", func() {
		input := writeFile("input.txt", "1 1\n3\n5\n7\n")
		recorder.EXPECT().RecordRun(gomock.Any(), gomock.Any()).Return(nil)

		res, err := pipeline.Run(context.Background(), input, output)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Instance.DummySource).To(BeTrue())
		Expect(res.Allocation.Shipments).To(Equal([]Shipment{
			{Source: 0, Destination: 0, Amount: 3},
			{Source: 1, Destination: 0, Amount: 2},
		}))
	})

	It("should produce identical reports for identical input", func() {
		input := writeFile("input.txt", "2 3\n15 25\n10 10 20\n4 8 8\n16 24 16\n")
		recorder.EXPECT().RecordRun(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := pipeline.Run(context.Background(), input, output)
		Expect(err).NotTo(HaveOccurred())
		first, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())

		_, err = pipeline.Run(context.Background(), input, output)
		Expect(err).NotTo(HaveOccurred())
		second, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
	})

	It("should keep running when the recorder fails", func() {
		input := writeFile("input.txt", "1 1\n5\n5\n1\n")
		recorder.EXPECT().RecordRun(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := pipeline.Run(context.Background(), input, output)

		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(BeAnExistingFile())
		Expect(logged.String()).To(ContainSubstring("recording run: disk full"))
	})

	It("should leave the output alone when there is no solution", func() {
		backend := NewMockBackend(mockCtrl)
		backend.EXPECT().Name().Return("mock").AnyTimes()
		backend.EXPECT().
			Solve(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&lp.Solution{Status: lp.ModelStatusInfeasible}, nil)
		pipeline.Solver = NewSolver(WithSolveOptions(lp.WithBackend(backend)))

		input := writeFile("input.txt", "1 1\n5\n5\n1\n")
		writeFile("output.txt", "previous report\n")
		recorder.EXPECT().
			RecordRun(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, run RunSummary) error {
				Expect(run.Solved).To(BeFalse())
				Expect(run.Status).To(Equal("Infeasible"))
				return nil
			})

		res, err := pipeline.Run(context.Background(), input, output)

		Expect(res).To(BeNil())
		Expect(errors.Is(err, ErrNoSolution)).To(BeTrue())
		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("previous report\n"))
	})

	It("should record a run that hit the solve deadline", func() {
		backend := NewMockBackend(mockCtrl)
		backend.EXPECT().Name().Return("slow").AnyTimes()
		backend.EXPECT().
			Solve(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ *lp.Problem, _ *lp.SolveConfig) (*lp.Solution, error) {
				<-ctx.Done()
				return &lp.Solution{Status: lp.ModelStatusTimeLimit}, nil
			})
		pipeline.Solver = NewSolver(WithSolveOptions(lp.WithBackend(backend)))

		input := writeFile("input.txt", "1 1\n5\n5\n1\n")
		recorder.EXPECT().
			RecordRun(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, run RunSummary) error {
				Expect(ctx.Err()).NotTo(HaveOccurred())
				Expect(run.Solved).To(BeFalse())
				Expect(run.Status).To(Equal("TimeLimit"))
				Expect(run.Backend).To(Equal("slow"))
				return nil
			})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := pipeline.Run(ctx, input, output)

		Expect(errors.Is(err, ErrNoSolution)).To(BeTrue())
		Expect(ctx.Err()).To(HaveOccurred())
		Expect(output).NotTo(BeAnExistingFile())
	})

	It("should stop before solving when the input is missing", func() {
		_, err := pipeline.Run(context.Background(), filepath.Join(dir, "missing.txt"), output)

		Expect(errors.Is(err, ErrIO)).To(BeTrue())
		Expect(output).NotTo(BeAnExistingFile())
	})

	It("should stop before solving when the input is malformed", func() {
		input := writeFile("input.txt", "2 2\n1 2\n")

		_, err := pipeline.Run(context.Background(), input, output)

		Expect(errors.Is(err, ErrMalformedInput)).To(BeTrue())
		Expect(output).NotTo(BeAnExistingFile())
	})

	It("should work without a recorder", func() {
		pipeline.Recorder = nil
		input := writeFile("input.txt", "1 1\n5\n5\n1\n")

		_, err := pipeline.Run(context.Background(), input, output)

		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(BeAnExistingFile())
	})
})
