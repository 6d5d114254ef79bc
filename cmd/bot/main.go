// A small reference client: it connects, wanders one cell at a time, and
// interacts with the cell it lands on. Useful for smoke-testing a server and
// as a worked example of the protocol.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"cachecraft.gg/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "client name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastPlayer protocol.PlayerMsg
	nextMove := time.Now().Add(2 * time.Second)

	for {
		select {
		case <-stop:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME client_id=%s seed=%d victory=%d", w.ClientID, w.SessionParams.Seed, w.SessionParams.VictoryThreshold)

		case protocol.TypePlayer:
			if err := json.Unmarshal(msg, &lastPlayer); err != nil {
				continue
			}
			if lastPlayer.Won {
				logger.Printf("won with held=%d score=%d; restarting", lastPlayer.Held, lastPlayer.Score)
				_ = conn.WriteJSON(protocol.ActMsg{
					Type:            protocol.TypeAct,
					ProtocolVersion: protocol.Version,
					Kind:            protocol.ActRestart,
				})
				continue
			}
			if time.Now().After(nextMove) {
				nextMove = time.Now().Add(time.Duration(500+r.Intn(1500)) * time.Millisecond)
				_ = conn.WriteJSON(protocol.ActMsg{
					Type:            protocol.TypeAct,
					ProtocolVersion: protocol.Version,
					Kind:            protocol.ActStep,
					DI:              r.Intn(3) - 1,
					DJ:              r.Intn(3) - 1,
				})
				_ = conn.WriteJSON(protocol.ActMsg{
					Type:            protocol.TypeAct,
					ProtocolVersion: protocol.Version,
					Kind:            protocol.ActInteract,
					I:               lastPlayer.CellI,
					J:               lastPlayer.CellJ,
				})
			}

		case protocol.TypeReject:
			var rej protocol.RejectMsg
			if err := json.Unmarshal(msg, &rej); err != nil {
				continue
			}
			logger.Printf("rejected cell=(%d,%d) code=%s", rej.I, rej.J, rej.Code)
		}
	}
}
