package chassis

import (
	"math"
	"sync"
	"time"

	"github.com/edaniels/golog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/odom"
	"github.com/san-kum/driveline/internal/simbot"
)

// poseTrace records the estimated pose per control tick so specs can
// assert on the path taken, not just the endpoint.
type poseTrace struct {
	mu    sync.Mutex
	poses []geo.Pose
}

func (p *poseTrace) OnTick(pose geo.Pose, _, _ float64, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.poses = append(p.poses, pose)
}

func (p *poseTrace) minTheta() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	min := math.Inf(1)
	for _, pose := range p.poses {
		if pose.Theta < min {
			min = pose.Theta
		}
	}
	return min
}

var _ = Describe("closed-loop motion", func() {
	var (
		robot *simbot.Robot
		est   *odom.Estimator
		c     *Chassis
		trace *poseTrace
		stop  func()
	)

	BeforeEach(func() {
		logger := golog.NewTestLogger(suiteT)
		robot = simbot.New()
		est = odom.New(
			robot.XEncoder(), robot.YEncoder(), robot.IMU(),
			robot.TPU, geo.Point{}, 0, logger,
		)
		c = New(robot.Drivetrain(), est, Options{}, Options{}, Options{}, logger)
		trace = &poseTrace{}
		c.AddObserver(trace)

		Expect(est.Start()).To(Succeed())

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(2 * time.Millisecond)
			defer ticker.Stop()
			last := time.Now()
			for {
				select {
				case <-done:
					return
				case now := <-ticker.C:
					robot.Step(now.Sub(last).Seconds())
					last = now
				}
			}
		}()
		stop = func() { close(done) }
	})

	AfterEach(func() {
		c.Stop(true)
		est.Stop()
		stop()
	})

	It("drives to a straight-ahead point and comes to rest", func() {
		c.Move(geo.Point{X: 40}, Options{
			Exit:    Ptr(1.0),
			Timeout: Ptr(10 * time.Second),
		})

		pose := robot.Pose()
		Expect(pose.X).To(BeNumerically("~", 40, 2.5))
		Expect(pose.Y).To(BeNumerically("~", 0, 2.5))

		left, right := robot.Voltages()
		Expect(left).To(BeZero())
		Expect(right).To(BeZero())
	})

	It("reaches an off-axis point by steering toward it", func() {
		c.Move(geo.Point{X: 30, Y: 30}, Options{
			Exit:    Ptr(1.5),
			Timeout: Ptr(10 * time.Second),
		})

		pose := robot.Pose()
		Expect(pose.Point().Distance(geo.Point{X: 30, Y: 30})).To(BeNumerically("<", 3))
	})

	It("backs up to a point behind the robot without spinning around", func() {
		c.Move(geo.Point{X: -30}, Options{
			Exit:    Ptr(1.5),
			Timeout: Ptr(10 * time.Second),
		})

		pose := robot.Pose()
		Expect(pose.X).To(BeNumerically("~", -30, 3))
		// The auto direction picks reverse; the heading never flips.
		Expect(math.Abs(pose.Theta)).To(BeNumerically("<", math.Pi/2))
	})

	It("turns to a heading within tolerance", func() {
		c.Turn(90, Options{
			Exit:    Ptr(geo.ToRad(2)),
			Timeout: Ptr(5 * time.Second),
		})

		Expect(robot.Pose().Theta).To(BeNumerically("~", math.Pi/2, geo.ToRad(5)))
	})

	It("takes the long clockwise path when the sense is forced", func() {
		c.Turn(90, Options{
			Turn:    Ptr(CW),
			Exit:    Ptr(geo.ToRad(2)),
			Timeout: Ptr(5 * time.Second),
		})

		Expect(robot.Pose().Theta).To(BeNumerically("~", math.Pi/2, geo.ToRad(5)))
		// Clockwise from 0 means the heading went negative on the way.
		Expect(trace.minTheta()).To(BeNumerically("<", -0.5))
	})

	It("keeps the estimate in agreement with the ground truth", func() {
		c.Move(geo.Point{X: 24, Y: 18}, Options{
			Exit:    Ptr(1.5),
			Timeout: Ptr(10 * time.Second),
		})

		truth := robot.Pose()
		guess := est.Pose()
		Expect(guess.Point().Distance(truth.Point())).To(BeNumerically("<", 2))
	})

	It("follows a multi-point path to its final waypoint", func() {
		c.Follow([]geo.Point{{X: 20}, {X: 20, Y: 20}}, Options{
			Exit:    Ptr(2.0),
			Timeout: Ptr(15 * time.Second),
		})

		pose := robot.Pose()
		Expect(pose.Point().Distance(geo.Point{X: 20, Y: 20})).To(BeNumerically("<", 4))
	})
})
