package domain

import "errors"

// MessageType tags what a message body and metadata describe.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageFile     MessageType = "file"
	MessageVoice    MessageType = "voice"
	MessageLocation MessageType = "location"
)

// ErrMetadataShape is returned when a Metadata value does not carry exactly
// the variant its Type names.
var ErrMetadataShape = errors.New("metadata variant does not match type")

// FileMeta describes an uploaded file. BlobRef points at the external blob
// store; the descriptor itself travels encrypted.
type FileMeta struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	BlobRef  string `json:"blobRef"`
}

// VoiceMeta describes a voice clip.
type VoiceMeta struct {
	DurationSeconds int    `json:"durationSeconds"`
	MimeType        string `json:"mimeType"`
	BlobRef         string `json:"blobRef"`
}

// LocationMeta describes a shared location.
type LocationMeta struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// Metadata is the tagged union serialized through the message cipher for
// non-text message types. Exactly one variant matching Type is set.
type Metadata struct {
	Type     MessageType   `json:"type"`
	File     *FileMeta     `json:"file,omitempty"`
	Voice    *VoiceMeta    `json:"voice,omitempty"`
	Location *LocationMeta `json:"location,omitempty"`
}

// Validate checks that the variant present matches Type.
func (m Metadata) Validate() error {
	switch m.Type {
	case MessageFile:
		if m.File == nil || m.Voice != nil || m.Location != nil {
			return ErrMetadataShape
		}
	case MessageVoice:
		if m.Voice == nil || m.File != nil || m.Location != nil {
			return ErrMetadataShape
		}
	case MessageLocation:
		if m.Location == nil || m.File != nil || m.Voice != nil {
			return ErrMetadataShape
		}
	default:
		return ErrMetadataShape
	}
	return nil
}

// Message is the remote message record. Ciphertext and metadata are
// decryptable only by the conversation key named by ConversationID and
// KeyVersion; plaintext is never persisted.
type Message struct {
	ID                   MessageID      `json:"id"`
	ConversationID       ConversationID `json:"conversationId"`
	Sender               UserID         `json:"sender"`
	CiphertextB64        string         `json:"ciphertext_b64"`
	IVB64                string         `json:"iv_b64"`
	Type                 MessageType    `json:"message_type"`
	EncryptedMetadataB64 string         `json:"encrypted_metadata_b64,omitempty"`
	KeyVersion           int            `json:"key_version"`
	SentAt               int64          `json:"sentAt"`
}

// DecryptedMessage is the transient, process-local view of a message.
// Never persisted; rebuilt every session. Undecryptable marks a message
// whose ciphertext failed authentication; Content is empty in that case
// and the UI renders a placeholder.
type DecryptedMessage struct {
	ID             MessageID
	ConversationID ConversationID
	Sender         UserID
	Type           MessageType
	Content        string
	Metadata       *Metadata
	SentAt         int64
	Undecryptable  bool
}
