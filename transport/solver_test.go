package transport

import (
	"bytes"
	"context"
	"errors"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/bartolsthoorn/transportlp/lp"
)

var _ = Describe("Solver", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockBackend
		in       *Instance
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockBackend(mockCtrl)
		backend.EXPECT().Name().Return("mock").AnyTimes()

		in = &Instance{
			Supplies: []int{5},
			Demands:  []int{2, 3},
			Costs:    [][]int{{4, 1}},
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newSolver := func(opts ...Option) *Solver {
		opts = append(opts, WithSolveOptions(lp.WithBackend(backend)))
		return NewSolver(opts...)
	}

	Context("building the model", func() {
		It("should lay out variables row-major", func() {
			in = &Instance{
				Supplies: []int{20, 30},
				Demands:  []int{25, 25},
				Costs:    [][]int{{8, 6}, {9, 7}},
			}

			model := NewSolver().BuildModel(in)

			Expect(model.NumVars()).To(Equal(4))
			Expect(model.ColCosts).To(Equal([]float64{8, 6, 9, 7}))
			Expect(model.ColName(0)).To(Equal("x[0,0]"))
			Expect(model.ColName(1)).To(Equal("x[0,1]"))
			Expect(model.ColName(2)).To(Equal("x[1,0]"))
			for _, lo := range model.ColLower {
				Expect(lo).To(BeZero())
			}
			Expect(model.VarTypes).To(BeEmpty())
		})

		It("should add one equality per source and per destination", func() {
			in = &Instance{
				Supplies: []int{20, 30},
				Demands:  []int{25, 25},
				Costs:    [][]int{{8, 6}, {9, 7}},
			}

			model := NewSolver().BuildModel(in)

			Expect(model.NumConstraints()).To(Equal(4))
			Expect(model.RowName(0)).To(Equal("Supply_Constraint_0"))
			Expect(model.RowName(1)).To(Equal("Supply_Constraint_1"))
			Expect(model.RowName(2)).To(Equal("Demand_Constraint_0"))
			Expect(model.RowName(3)).To(Equal("Demand_Constraint_1"))
			Expect(model.RowLower).To(Equal([]float64{20, 30, 25, 25}))
			Expect(model.RowUpper).To(Equal(model.RowLower))
			Expect(model.ConstMatrix).To(HaveLen(8))
		})

		It("should declare integer flows when asked", func() {
			model := NewSolver(WithIntegerFlows(true)).BuildModel(in)

			Expect(model.VarTypes).To(Equal([]lp.VariableType{lp.Integer, lp.Integer}))
		})

		It("should log every variable when verbose", func() {
			var buf bytes.Buffer
			NewSolver(WithVerbose(true), WithLogger(log.New(&buf, "", 0))).BuildModel(in)

			Expect(buf.String()).To(ContainSubstring("variable x[0,0]"))
			Expect(buf.String()).To(ContainSubstring("variable x[0,1]"))
		})
	})

	Context("solving", func() {
		It("should hand the backend the transportation problem", func() {
			backend.EXPECT().
				Solve(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p *lp.Problem, _ *lp.SolveConfig) (*lp.Solution, error) {
					Expect(p.NumCol).To(Equal(2))
					Expect(p.NumRow).To(Equal(3))
					Expect(p.Maximize).To(BeFalse())
					Expect(p.ColCosts).To(Equal([]float64{4, 1}))
					return &lp.Solution{Status: lp.ModelStatusOptimal, ColValues: []float64{2, 3}, Objective: 11}, nil
				})

			alloc, err := newSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Backend).To(Equal("mock"))
			Expect(alloc.Objective).To(Equal(11.0))
			Expect(alloc.Shipments).To(Equal([]Shipment{
				{Source: 0, Destination: 0, Amount: 2},
				{Source: 0, Destination: 1, Amount: 3},
			}))
		})

		It("should round each flow on its own", func() {
			backend.EXPECT().
				Solve(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&lp.Solution{Status: lp.ModelStatusOptimal, ColValues: []float64{2.05, 2.15}}, nil)

			alloc, err := newSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Shipments).To(Equal([]Shipment{
				{Source: 0, Destination: 0, Amount: 2},
				{Source: 0, Destination: 1, Amount: 3},
			}))
		})

		It("should omit flows that round to zero", func() {
			backend.EXPECT().
				Solve(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&lp.Solution{Status: lp.ModelStatusOptimal, ColValues: []float64{0.05, 4.95}}, nil)

			alloc, err := newSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Shipments).To(Equal([]Shipment{
				{Source: 0, Destination: 1, Amount: 5},
			}))
		})

		It("should report a non-optimal status as no solution", func() {
			backend.EXPECT().
				Solve(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&lp.Solution{Status: lp.ModelStatusInfeasible}, nil)

			alloc, err := newSolver().Solve(context.Background(), in)

			Expect(alloc).To(BeNil())
			Expect(errors.Is(err, ErrNoSolution)).To(BeTrue())

			var noSol *NoSolutionError
			Expect(errors.As(err, &noSol)).To(BeTrue())
			Expect(noSol.Status).To(Equal(lp.ModelStatusInfeasible))
			Expect(noSol.Backend).To(Equal("mock"))
		})

		It("should report a backend failure as no solution", func() {
			failure := errors.New("backend crashed")
			backend.EXPECT().
				Solve(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, failure)

			_, err := newSolver().Solve(context.Background(), in)

			Expect(errors.Is(err, ErrNoSolution)).To(BeTrue())
			Expect(errors.Is(err, failure)).To(BeTrue())
		})

		It("should report an expired deadline as a time limit", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
			defer cancel()
			<-ctx.Done()

			_, err := newSolver().Solve(ctx, in)

			var noSol *NoSolutionError
			Expect(errors.As(err, &noSol)).To(BeTrue())
			Expect(noSol.Status).To(Equal(lp.ModelStatusTimeLimit))
		})

		It("should return cancellation unchanged", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := newSolver().Solve(ctx, in)

			Expect(err).To(MatchError(context.Canceled))
			Expect(errors.Is(err, ErrNoSolution)).To(BeFalse())
		})

		It("should refuse an unbalanced instance", func() {
			in.Demands = []int{2, 2}

			_, err := newSolver().Solve(context.Background(), in)

			Expect(errors.Is(err, ErrMalformedInput)).To(BeTrue())
		})

		It("should report an unknown backend name as no solution", func() {
			_, err := NewSolver(WithBackendName("nonexistent")).Solve(context.Background(), in)

			var noSol *NoSolutionError
			Expect(errors.As(err, &noSol)).To(BeTrue())
			Expect(noSol.Status).To(Equal(lp.ModelStatusSolveError))
			Expect(noSol.Backend).To(Equal("nonexistent"))
		})
	})

	Context("with the simplex backend", func() {
		It("should find the unique optimum", func() {
			in = Balance(&Instance{
				Supplies: []int{10, 10},
				Demands:  []int{10, 10},
				Costs:    [][]int{{1, 5}, {5, 1}},
			})

			alloc, err := NewSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Backend).To(Equal(lp.SimplexBackendName))
			Expect(alloc.Shipments).To(Equal([]Shipment{
				{Source: 0, Destination: 0, Amount: 10},
				{Source: 1, Destination: 1, Amount: 10},
			}))
			Expect(alloc.Objective).To(BeNumerically("~", 20, 1e-6))
		})

		It("should conserve supply and demand", func() {
			in = Balance(&Instance{
				Supplies: []int{20, 30},
				Demands:  []int{25, 25},
				Costs:    [][]int{{8, 6}, {9, 7}},
			})

			alloc, err := NewSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Deviation(in)).To(BeZero())
			Expect(alloc.Cost(in)).To(Equal(380))
			Expect(alloc.Objective).To(BeNumerically("~", 380, 1e-6))
		})

		It("should route excess supply to the dummy destination", func() {
			in = Balance(&Instance{
				Supplies: []int{10},
				Demands:  []int{4, 4},
				Costs:    [][]int{{1, 2}},
			})

			alloc, err := NewSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Shipments).To(Equal([]Shipment{
				{Source: 0, Destination: 0, Amount: 4},
				{Source: 0, Destination: 1, Amount: 4},
				{Source: 0, Destination: 2, Amount: 2},
			}))
		})

		It("should return an empty plan when nothing moves", func() {
			in = Balance(&Instance{
				Supplies: []int{0, 0},
				Demands:  []int{0},
				Costs:    [][]int{{3}, {4}},
			})

			alloc, err := NewSolver().Solve(context.Background(), in)

			Expect(err).NotTo(HaveOccurred())
			Expect(alloc.Shipments).To(BeEmpty())
		})

		It("should reject integer flows", func() {
			_, err := NewSolver(WithIntegerFlows(true)).Solve(context.Background(), in)

			Expect(errors.Is(err, ErrNoSolution)).To(BeTrue())
		})
	})
})
