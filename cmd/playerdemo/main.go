// Demo player server.
//
// Hosts the stream player page the verifier drives: a URL input, a
// Start Streaming button, a video element with a mousemove-revealed
// controls overlay, and a WebRTC ingest endpoint that counts the RTP
// packets the page publishes while playing.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/thesyncim/playercheck/cmd/playerdemo/server"
)

func main() {
	addr := flag.String("addr", ":3000", "Listen address")
	flag.Parse()

	fmt.Println(`
Stream Player Demo Server
=========================
1. Open the printed address in a browser
2. Paste a video URL and click "Start Streaming"
3. Move the mouse over the player to reveal the controls
4. Check /api/stats for RTP delivery counters`)

	cfg := server.Config{Addr: *addr}
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	listenAddr, err := srv.Start()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("Listening on %s", listenAddr)

	// Block forever
	select {}
}
