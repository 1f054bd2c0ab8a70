// Terminal test client for the chat bridge. It joins a room, streams
// incoming frames, echoes sent messages locally, and prints a session
// summary table on exit. Development tooling, not the end-user client.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"chat-bridge/transport/ws"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"ws://localhost:3001/ws"`
	Colours   bool   `envconfig:"CLIENT_COLOURS" default:"true"`
}

func main() {
	room := flag.String("room", "demo", "Room code to join")
	lang := flag.String("lang", "en", "Language code (en or pt)")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(config.ServerURL, nil)
	if err != nil {
		log.Fatalf("Connection to %s failed: %v", config.ServerURL, err)
	}
	defer conn.Close()

	if err := send(conn, ws.EventJoinRoom, ws.JoinRoomPayload{
		RoomCode: *room,
		Language: *lang,
	}); err != nil {
		log.Fatalf("Join failed: %v", err)
	}

	header := fmt.Sprintf("  ====== room %s (%s) ======", *room, *lang)
	if config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	var sent, received, fallbacks uint64

	go func() {
		for {
			var env ws.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				fmt.Println("disconnected")
				printSummary(atomic.LoadUint64(&sent), atomic.LoadUint64(&received), atomic.LoadUint64(&fallbacks))
				os.Exit(0)
			}
			printFrame(config, env, &received, &fallbacks)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		err := send(conn, ws.EventSendMessage, ws.SendMessagePayload{
			RoomCode: *room,
			Message: ws.MessagePayload{
				ID:        uuid.NewString(),
				Original:  text,
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			},
		})
		if err != nil {
			log.Fatalf("Send failed: %v", err)
		}
		atomic.AddUint64(&sent, 1)
		// Local echo: the server never mirrors a message to its sender.
		if config.Colours {
			color.Gray.Printf("you> %s\n", text)
		} else {
			fmt.Printf("you> %s\n", text)
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	printSummary(atomic.LoadUint64(&sent), atomic.LoadUint64(&received), atomic.LoadUint64(&fallbacks))
}

func send(conn *websocket.Conn, eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(ws.Envelope{Event: eventName, Data: data})
}

func printFrame(config Config, env ws.Envelope, received, fallbacks *uint64) {
	switch env.Event {
	case ws.EventUserJoined:
		var p ws.UserJoinedPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		line := fmt.Sprintf("* %s joined (%s), %d in room", short(p.UserID), p.Language, p.UsersCount)
		if config.Colours {
			color.Green.Println(line)
		} else {
			fmt.Println(line)
		}
	case ws.EventUserLeft:
		var p ws.UserLeftPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		line := fmt.Sprintf("* %s left, %d in room", short(p.UserID), p.UsersCount)
		if config.Colours {
			color.Yellow.Println(line)
		} else {
			fmt.Println(line)
		}
	case ws.EventReceiveMessage:
		var p ws.ReceiveMessagePayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		atomic.AddUint64(received, 1)
		if strings.HasPrefix(p.Translated, "[Translation failed]") {
			atomic.AddUint64(fallbacks, 1)
		}
		if config.Colours {
			color.Cyan.Printf("%s> %s\n", p.Sender, p.Translated)
		} else {
			fmt.Printf("%s> %s\n", p.Sender, p.Translated)
		}
		if p.Translated != p.Original {
			fmt.Printf("     (original: %s)\n", p.Original)
		}
	}
}

func printSummary(sent, received, fallbacks uint64) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sent", "Received", "Fallbacks"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.Append([]string{
		strconv.FormatUint(sent, 10),
		strconv.FormatUint(received, 10),
		strconv.FormatUint(fallbacks, 10),
	})
	table.Render()
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
