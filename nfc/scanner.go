package nfc

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ScannerConfig configures a Scanner.
type ScannerConfig struct {
	Manager    Manager
	DevicePath string // empty selects the first available device
	Handler    *Handler
	Interval   time.Duration
	// TagTypes restricts reported tags to these Type() values. Empty allows all.
	TagTypes []string
	Logger   zerolog.Logger
}

// Scanner polls a hardware reader and publishes one Result per tag arrival.
// A tag that stays in the field is reported once; it is reported again after
// it has left the field for at least one poll.
type Scanner struct {
	manager    Manager
	devicePath string
	handler    *Handler
	interval   time.Duration
	allowed    map[string]bool
	logger     zerolog.Logger

	results  chan Result
	stopChan chan struct{}
	stopOnce sync.Once
	workerWg sync.WaitGroup

	mu        sync.Mutex
	device    Device
	present   map[string]bool
	nextRetry time.Time
}

// NewScanner creates a Scanner. It does not open the device until Start.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("NFC manager cannot be nil")
	}
	if cfg.Handler == nil {
		cfg.Handler = NewHandler(nil, cfg.Logger)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollingInterval
	}

	var allowed map[string]bool
	if len(cfg.TagTypes) > 0 {
		allowed = make(map[string]bool, len(cfg.TagTypes))
		for _, t := range cfg.TagTypes {
			allowed[t] = true
		}
	}

	return &Scanner{
		manager:    cfg.Manager,
		devicePath: cfg.DevicePath,
		handler:    cfg.Handler,
		interval:   cfg.Interval,
		allowed:    allowed,
		logger:     cfg.Logger.With().Str("component", "scanner").Logger(),
		results:    make(chan Result, 8),
		stopChan:   make(chan struct{}),
		present:    make(map[string]bool),
	}, nil
}

// Results returns the channel results are published on. It is closed after Stop.
func (s *Scanner) Results() <-chan Result {
	return s.results
}

// Start begins polling in a separate goroutine.
func (s *Scanner) Start() {
	s.workerWg.Add(1)
	go s.worker()
}

// Stop shuts the worker down, closes the device and waits for completion.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.workerWg.Wait()
}

// DeviceName returns the name of the open device, or "" when disconnected.
func (s *Scanner) DeviceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return ""
	}
	return s.device.String()
}

func (s *Scanner) worker() {
	defer s.workerWg.Done()
	defer close(s.results)
	defer s.closeDevice()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.logger.Info().Msg("scanner stopped")
			return
		case <-ticker.C:
			for _, result := range s.poll(time.Now()) {
				select {
				case s.results <- result:
				case <-s.stopChan:
					return
				}
			}
		}
	}
}

// poll runs one polling cycle and returns the results for newly arrived tags.
func (s *Scanner) poll(now time.Time) []Result {
	dev, err := s.ensureDevice(now)
	if err != nil {
		return nil
	}

	tags, err := dev.GetTags()
	if err != nil {
		s.logger.Warn().Err(err).Msg("polling for tags failed, reconnecting")
		s.closeDevice()
		s.mu.Lock()
		s.nextRetry = now.Add(DeviceRetryDelay)
		s.mu.Unlock()
		return nil
	}

	var results []Result
	inField := make(map[string]bool, len(tags))
	for _, tag := range tags {
		key := FormatTagID(tag.ID())
		if key == "" || !s.typeAllowed(tag) {
			continue
		}
		inField[key] = true

		s.mu.Lock()
		seen := s.present[key]
		s.mu.Unlock()
		if seen {
			continue
		}

		result, err := s.handler.Handle(NewScanEvent(ActionTagDiscovered, tag))
		if err != nil {
			s.logger.Warn().Err(err).Str("tag", key).Msg("scan event rejected")
			continue
		}
		results = append(results, result)
	}

	s.mu.Lock()
	s.present = inField
	s.mu.Unlock()
	return results
}

func (s *Scanner) typeAllowed(tag Tag) bool {
	return s.allowed == nil || s.allowed[tag.Type()]
}

// ensureDevice opens and initialises the device if needed, honouring the
// retry delay after a failure.
func (s *Scanner) ensureDevice(now time.Time) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return s.device, nil
	}
	if now.Before(s.nextRetry) {
		return nil, fmt.Errorf("device retry pending")
	}

	dev, err := s.manager.OpenDevice(s.devicePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("device", s.devicePath).Msg("opening NFC device failed")
		s.nextRetry = now.Add(DeviceRetryDelay)
		return nil, err
	}
	if err := dev.InitiatorInit(); err != nil {
		s.logger.Warn().Err(err).Msg("initialising NFC device failed")
		dev.Close()
		s.nextRetry = now.Add(DeviceRetryDelay)
		return nil, err
	}

	s.logger.Info().Str("device", dev.String()).Str("connection", dev.Connection()).Msg("NFC device connected")
	s.device = dev
	return dev, nil
}

func (s *Scanner) closeDevice() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return
	}
	if err := s.device.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("closing NFC device")
	}
	s.device = nil
	s.present = make(map[string]bool)
}
