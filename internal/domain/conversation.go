package domain

// KeyWrapVersion is the current wrap-record format version. Records carrying
// an unknown version are rejected rather than assumed compatible.
const KeyWrapVersion = 1

// WrapRecord is one participant's independently decryptable copy of a
// conversation key. All byte fields are base64 strings for JSON transport.
//
// WrappedBy names the member whose keypair was used on the wrapping side.
// It is empty for wraps produced at conversation creation, which are always
// by the creator; it is set when an existing member fans out a wrap to a
// participant added later.
type WrapRecord struct {
	WrappedKeyB64 string `json:"wrapped_key_b64"`
	IVB64         string `json:"wrap_iv_b64"`
	SaltB64       string `json:"kdf_salt_b64"`
	Version       int    `json:"version"`
	WrappedBy     UserID `json:"wrapped_by,omitempty"`
}

// KeyWraps maps each participant to their wrap of the conversation key.
// The entry count equals the participant count at creation time.
type KeyWraps map[UserID]WrapRecord

// Conversation is the remote conversation record. The conversation key
// itself exists on the wire and at rest only as the KeyWraps entries.
type Conversation struct {
	ID           ConversationID `json:"id"`
	Scope        Scope          `json:"scope"`
	Creator      UserID         `json:"creator"`
	Participants []UserID       `json:"participants"`
	KeyWraps     KeyWraps       `json:"keyWraps"`
	CreatedAt    int64          `json:"createdAt"`
}
