package host

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

var _ = Describe("Host", func() {
	var (
		h      *Host
		cancel context.CancelFunc
		errc   chan error
	)

	BeforeEach(func() {
		cfg := DefaultConfig()
		cfg.TickInterval = time.Millisecond
		setup := testSetup(1700)
		setup.Room.AC.Enabled = true

		var err error
		h, err = New(setup, cfg, log.New(io.Discard))
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		errc = make(chan error, 1)
		go func() { errc <- h.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(errc).Should(Receive(MatchError(context.Canceled)))
	})

	It("publishes snapshots while running", func() {
		Eventually(h.Snapshots()).Should(Receive(HaveField("Time", BeNumerically(">", 0))))
	})

	It("replaces an unread snapshot with the newest one", func() {
		var first Snapshot
		Eventually(h.Snapshots()).Should(Receive(&first))
		time.Sleep(30 * time.Millisecond)
		Expect(h.Send(context.Background(), PauseCommand())).To(Succeed())

		var s Snapshot
		Expect(h.Snapshots()).To(Receive(&s))
		Expect(s.Paused).To(BeTrue())
		Expect(s.Time).To(BeNumerically(">", first.Time))
		Consistently(h.Snapshots(), 20*time.Millisecond).ShouldNot(Receive())
	})

	It("applies commands in the order they were sent", func() {
		ctx := context.Background()
		for _, w := range []float64{10, 20, 30} {
			Expect(h.Send(ctx, HeaterPower(w))).To(Succeed())
		}
		Expect(h.Send(ctx, PauseCommand())).To(Succeed())
		var s Snapshot
		Eventually(h.Snapshots()).Should(Receive(&s))
		Expect(s.HeaterPower).To(Equal(30.0))
		Expect(s.Paused).To(BeTrue())
	})

	It("rejects an out-of-range setpoint and keeps the old one", func() {
		ctx := context.Background()
		Expect(h.Send(ctx, Setpoint(19))).To(Succeed())
		Expect(h.Send(ctx, Setpoint(400))).To(MatchError(thermo.ErrInvalidCommand))

		var s Snapshot
		Eventually(h.Snapshots()).Should(Receive(&s))
		Expect(s.Setpoint).To(Equal(19.0))
	})

	It("never exposes a partial tick across a reset", func() {
		ctx := context.Background()
		Expect(h.Send(ctx, Speed(MaxSpeed))).To(Succeed())
		Expect(h.Send(ctx, Reset(sim.NewBody(3, 10, 0)))).To(Succeed())

		var s Snapshot
		Eventually(h.Snapshots()).Should(Receive(&s))
		Expect(s.LiquidMass + s.ResidueMass + s.VaporizedMass).To(BeNumerically("~", 3, 1e-9))
	})

	It("survives a burst of invalid commands", func() {
		ctx := context.Background()
		for i := 0; i < 50; i++ {
			Expect(h.Send(ctx, Speed(0))).To(MatchError(thermo.ErrInvalidCommand))
		}
		Expect(h.Send(ctx, ResumeCommand())).To(Succeed())
		Eventually(h.Snapshots()).Should(Receive(HaveField("Paused", BeFalse())))
	})
})
