package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}
var clients = make(map[*websocket.Conn]bool)
var mu sync.Mutex

// Message is the wire shape pushed to kitchen and waiter clients.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

func HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			fmt.Println("Error during connection upgrade:", err)
			return
		}
		defer conn.Close()

		mu.Lock()
		clients[conn] = true
		mu.Unlock()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				mu.Lock()
				delete(clients, conn)
				mu.Unlock()
				break
			}
		}
	}
}

// notifyClients broadcasts an order event to every connected client.
func notifyClients(event string, payload interface{}) {
	mu.Lock()
	defer mu.Unlock()

	message := Message{Event: event, Payload: payload}
	messageBytes, err := json.Marshal(message)
	if err != nil {
		fmt.Println("Error marshaling message:", err)
		return
	}
	for client := range clients {
		err := client.WriteMessage(websocket.TextMessage, messageBytes)
		if err != nil {
			fmt.Println("Error writing message:", err)
			client.Close()
			delete(clients, client)
		}
	}
}
