package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"admissions-rag-be/internal/dto"

	"github.com/fatih/color"
)

// Interactive terminal client for the chat API. Streams NDJSON deltas and
// keeps the conversation id between questions.
func main() {
	baseURL := flag.String("url", "http://localhost:3000", "chat backend base URL")
	email := flag.String("email", "cli@donga.edu.vn", "user key for session binding")
	flag.Parse()

	bot := color.New(color.FgCyan)
	info := color.New(color.FgYellow)
	prompt := color.New(color.FgGreen, color.Bold)

	info.Println("Tư vấn tuyển sinh - gõ câu hỏi, 'exit' để thoát.")

	conversationId := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("Bạn: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" {
			break
		}

		payload, _ := json.Marshal(dto.ChatRequest{
			Message:        question,
			UserEmail:      *email,
			ConversationId: conversationId,
		})

		resp, err := http.Post(*baseURL+"/api/chat/v1/message", "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Printf("request failed: %v", err)
			continue
		}

		bot.Print("Tư vấn viên: ")
		lines := bufio.NewScanner(resp.Body)
		for lines.Scan() {
			var delta dto.ChatDelta
			if err := json.Unmarshal(lines.Bytes(), &delta); err != nil {
				continue
			}
			if delta.Error != "" {
				info.Printf("\n[lỗi] %s\n", delta.Error)
				continue
			}
			if delta.Done {
				conversationId = delta.ConversationId
				continue
			}
			bot.Print(delta.Delta)
		}
		resp.Body.Close()
		fmt.Println()
	}
}
