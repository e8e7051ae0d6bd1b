package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "websocket endpoint of the live prices server")
	symbols := flag.String("symbols", "BTCUSD", "comma-separated symbols to subscribe to")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *url, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("[%s] Connected to %s\n", time.Now().Format("15:04:05"), *url)

	subs := strings.Split(*symbols, ",")
	sub := map[string]interface{}{"action": "subscribe", "symbols": subs}
	if err := conn.WriteJSON(sub); err != nil {
		fmt.Fprintf(os.Stderr, "subscribe: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s] Subscribed to %s\n", time.Now().Format("15:04:05"), *symbols)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				fmt.Printf("[%s] Connection closed: %v\n", time.Now().Format("15:04:05"), err)
				return
			}

			var quote struct {
				Symbol    string          `json:"symbol"`
				Price     json.RawMessage `json:"price"`
				Timestamp string          `json:"timestamp"`
			}
			if err := json.Unmarshal(msg, &quote); err != nil || quote.Symbol == "" {
				fmt.Printf("[%s] Raw message: %s\n", time.Now().Format("15:04:05"), msg)
				continue
			}
			fmt.Printf("[%s] Symbol: %s, Price: %s, ServerTime: %s\n",
				time.Now().Format("15:04:05"), quote.Symbol, quote.Price, quote.Timestamp)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
