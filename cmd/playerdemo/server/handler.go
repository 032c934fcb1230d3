package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/nack"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// ingest accumulates RTP delivery counters across publish sessions.
// The player page publishes its playing video over WebRTC so the
// verifier can confirm frames actually flow, not just that a video
// element exists.
type ingest struct {
	mu        sync.Mutex
	sessions  int
	connected bool
	packets   uint64
	bytes     uint64
	ssrc      uint32
}

func (g *ingest) sessionStarted() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions++
}

func (g *ingest) setConnected(connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = connected
}

func (g *ingest) recordPacket(pkt *rtp.Packet) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.packets++
	g.bytes += uint64(len(pkt.Payload))
	g.ssrc = pkt.SSRC
}

// snapshot returns a copy suitable for JSON encoding.
func (g *ingest) snapshot() ingestSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ingestSnapshot{
		Sessions:  g.sessions,
		Connected: g.connected,
		Packets:   g.packets,
		Bytes:     g.bytes,
		SSRC:      g.ssrc,
	}
}

type ingestSnapshot struct {
	Sessions  int    `json:"sessions"`
	Connected bool   `json:"connected"`
	Packets   uint64 `json:"packets"`
	Bytes     uint64 `json:"bytes"`
	SSRC      uint32 `json:"ssrc"`
}

// handleStats reports ingest counters as JSON.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.stats.snapshot())
}

// handleOffer handles WebRTC publish offers from the player page.
// It creates a receive-only peer connection, counts the RTP packets the
// page delivers, and returns an answer.
func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse incoming offer
	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		log.Printf("Failed to decode offer: %v", err)
		http.Error(w, "Invalid offer", http.StatusBadRequest)
		return
	}

	// Create media engine with default codecs
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		log.Printf("Failed to register codecs: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Interceptor registry: RTCP reports plus NACK so lossy local links
	// don't skew the delivery counters.
	i := &interceptor.Registry{}
	if err := webrtc.ConfigureRTCPReports(i); err != nil {
		log.Printf("Failed to configure RTCP reports: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	m.RegisterFeedback(webrtc.RTCPFeedback{Type: "nack"}, webrtc.RTPCodecTypeVideo)
	m.RegisterFeedback(webrtc.RTCPFeedback{Type: "nack", Parameter: "pli"}, webrtc.RTPCodecTypeVideo)

	generator, err := nack.NewGeneratorInterceptor()
	if err != nil {
		log.Printf("Failed to create NACK generator: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	i.Add(generator)

	// Create API with custom media engine and interceptors
	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(m),
		webrtc.WithInterceptorRegistry(i),
	)

	config := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{}, // Local testing
	}
	peerConnection, err := api.NewPeerConnection(config)
	if err != nil {
		log.Printf("Failed to create peer connection: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Receive-only: the page publishes, we count
	_, err = peerConnection.AddTransceiverFromKind(
		webrtc.RTPCodecTypeVideo,
		webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly},
	)
	if err != nil {
		log.Printf("Failed to add transceiver: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	done := make(chan struct{})
	var endSession sync.Once

	peerConnection.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Printf("Receiving video track: codec=%s, ssrc=%d", track.Codec().MimeType, track.SSRC())

		// Ask for keyframes periodically so the stream stays decodable
		// even when the page starts publishing mid-GOP.
		go s.sendPLI(peerConnection, uint32(track.SSRC()), done)

		go func() {
			for {
				pkt, _, err := track.ReadRTP()
				if err != nil {
					log.Printf("Track read ended: %v", err)
					return
				}
				s.stats.recordPacket(pkt)
			}
		}()
	})

	peerConnection.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("Connection state: %s", state.String())
		switch state {
		case webrtc.PeerConnectionStateConnected:
			s.stats.setConnected(true)
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed,
			webrtc.PeerConnectionStateDisconnected:
			s.stats.setConnected(false)
			endSession.Do(func() { close(done) })
			peerConnection.Close()
		}
	})

	// Set remote description (the offer from the page)
	if err := peerConnection.SetRemoteDescription(offer); err != nil {
		log.Printf("Failed to set remote description: %v", err)
		http.Error(w, "Invalid offer", http.StatusBadRequest)
		return
	}

	answer, err := peerConnection.CreateAnswer(nil)
	if err != nil {
		log.Printf("Failed to create answer: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if err := peerConnection.SetLocalDescription(answer); err != nil {
		log.Printf("Failed to set local description: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Wait for ICE gathering to complete
	gatherComplete := webrtc.GatheringCompletePromise(peerConnection)
	<-gatherComplete

	s.stats.sessionStarted()

	// Send answer with complete ICE candidates
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(peerConnection.LocalDescription())

	log.Println("Publish session established, counting RTP delivery")
}

// sendPLI sends a Picture Loss Indication every 2 seconds until done is
// closed or the peer connection stops accepting RTCP.
func (s *Server) sendPLI(pc *webrtc.PeerConnection, ssrc uint32, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := pc.WriteRTCP([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: ssrc}})
			if err != nil {
				return
			}
		}
	}
}
