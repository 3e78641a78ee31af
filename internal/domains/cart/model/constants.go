package model

// Storage keys
const (
	// StorageKeyBySession format: "cart:session:{sessionID}"
	StorageKeyBySession = "cart:session:%s"
)
