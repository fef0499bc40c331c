package ws

import "encoding/json"

// MessageType constants for the session event stream. The stream is
// one-directional: the server pushes game events, clients only ping.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypePong            = "pong"
	TypeQuestionStarted = "question_started"
	TypeLetterRevealed  = "letter_revealed"
	TypeTimerFrozen     = "timer_frozen"
	TypeDoublePoints    = "double_points"
	TypeAnswerResult    = "answer_result"
	TypeChargesEarned   = "charges_earned"
	TypeSessionComplete = "session_complete"
	TypeSpeak           = "speak"      // TTS hook: read the payload text aloud
	TypePlaySound       = "play_sound" // sound-effect hook
	TypeError           = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a tagged message. Marshal failures return
// a bare message with the type only; event delivery is best effort.
func NewMessage(msgType string, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{Type: msgType}
	}
	return Message{Type: msgType, Payload: data}
}

// Server event payloads.

type QuestionStartedPayload struct {
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	Definition   string `json:"definition"`
	AnswerLength int    `json:"answer_length"`
}

type LetterRevealedPayload struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
	Charges  int    `json:"charges"`
}

type TimerFrozenPayload struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Charges        int     `json:"charges"`
}

type DoublePointsPayload struct {
	Stacks     int `json:"stacks"`
	Multiplier int `json:"multiplier"`
	Charges    int `json:"charges"`
}

type AnswerResultPayload struct {
	Correct      bool    `json:"correct"`
	PointsEarned int     `json:"points_earned"`
	Mistakes     int     `json:"mistakes"`
	TimeSeconds  float64 `json:"time_seconds"`
	Skipped      bool    `json:"skipped"`
}

type ChargesEarnedPayload struct {
	Added           int  `json:"added"`
	CappedAtMax     bool `json:"capped_at_max"`
	AntiFrustration bool `json:"anti_frustration"`
	Charges         int  `json:"charges"`
}

type SessionCompletePayload struct {
	TotalScore        int `json:"total_score"`
	QuestionsAnswered int `json:"questions_answered"`
	TotalQuestions    int `json:"total_questions"`
}

type SpeakPayload struct {
	Text string `json:"text"`
}

type PlaySoundPayload struct {
	Sound string `json:"sound"` // e.g. "correct", "wrong", "charge"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
