package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

type analyzeMessage struct {
	AudioBlob string `json:"audio_blob"`
	Timestamp int64  `json:"timestamp"`
	Location  string `json:"location,omitempty"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	serverURL := flag.String("server", envOr("SERVER_URL", "http://localhost:8000"), "server base URL")
	count := flag.Int("count", envInt("MESSAGE_COUNT", 3), "number of streaming messages to send")
	location := flag.String("location", os.Getenv("LOCATION"), "location to report, empty for the server default")
	uploadFile := flag.String("upload", os.Getenv("UPLOAD_FILE"), "file to send to the upload endpoint")
	flag.Parse()

	base, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("Invalid server URL: %v", err)
	}

	if *count > 0 {
		if err := stream(base, *count, *location); err != nil {
			log.Fatalf("Streaming failed: %v", err)
		}
	}

	if *uploadFile != "" {
		if err := upload(base, *uploadFile); err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
	}
}

func stream(base *url.URL, count int, location string) error {
	wsURL := *base
	wsURL.Scheme = "ws"
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = "/ws/audio"

	fmt.Printf("Connecting to: %s\n", wsURL.String())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	fmt.Println("✓ WebSocket connection successful!")

	for i := 0; i < count; i++ {
		msg := analyzeMessage{
			AudioBlob: base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("chunk-%d", i))),
			Timestamp: time.Now().UnixMilli(),
			Location:  location,
		}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("failed to send message %d: %w", i, err)
		}
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for i := 0; i < count; i++ {
		var result map[string]interface{}
		if err := conn.ReadJSON(&result); err != nil {
			return fmt.Errorf("failed to read result %d: %w", i, err)
		}
		fmt.Printf("✓ [%s] %s says: %q (confidence %.2f, at %s)\n",
			result["id"], result["animal"], result["message"], result["confidence"], result["location"])
	}

	err = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	fmt.Println("✓ Streaming completed")
	return nil
}

func upload(base *url.URL, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	uploadURL := base.JoinPath("/api/audio/analyze")
	resp, err := http.Post(uploadURL.String(), writer.FormDataContentType(), body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %v", resp.StatusCode, result)
	}

	fmt.Printf("✓ Upload classified: %s says %q (confidence %.2f)\n",
		result["animal"], result["message"], result["confidence"])
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
