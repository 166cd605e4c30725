package recognizer

import "sync"

// Stub is a deterministic, mutex-guarded FaceRecognizer fake for tests
// and for the "no model configured" default, mirroring the teacher's
// mock-repository style: per-call error injection plus call tracking.
type Stub struct {
	mu sync.Mutex

	// Detections, keyed by a caller-chosen identifier (usually the image
	// path isn't known here, so callers key by call index via Queue).
	Queue []StubResult
	calls int

	DetectCalls []Image
}

// StubResult is one queued response for Stub.Detect.
type StubResult struct {
	Detections []Detection
	Err        error
}

// NewStub builds a Stub that returns results from queue in order, one
// per Detect call; once exhausted it returns no detections.
func NewStub(queue ...StubResult) *Stub {
	return &Stub{Queue: queue}
}

func (s *Stub) Detect(img Image) ([]Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DetectCalls = append(s.DetectCalls, img)

	if s.calls >= len(s.Queue) {
		s.calls++
		return nil, nil
	}
	r := s.Queue[s.calls]
	s.calls++
	return r.Detections, r.Err
}

var _ FaceRecognizer = (*Stub)(nil)

// SingleDetection builds a Detection whose 128-dim embedding holds
// seed + i*0.0001 in dimension i, handy for deterministic clustering
// tests.
func SingleDetection(seed float32, bbox BBox) Detection {
	emb := make([]float32, 128)
	for i := range emb {
		emb[i] = seed + float32(i)*0.0001
	}
	return Detection{BBox: bbox, Confidence: 0.95, Embedding: emb, Landmarks: nil}
}
