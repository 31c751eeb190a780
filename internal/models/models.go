package models

import (
	"time"

	"github.com/google/uuid"
)

// User representa um usuário no sistema
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Nunca expor em JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Folder representa uma pasta protegida por senha, que agrupa evidências
type Folder struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Nunca expor em JSON
	UserID       uuid.UUID `json:"-"` // Dono exclusivo da pasta
	CreatedAt    time.Time `json:"createdAt"`
}

// Tipos de mídia aceitos para arquivos de evidência
const (
	MediaKindVideo = "video"
	MediaKindImage = "image"
	MediaKindAudio = "audio"
)

// MediaFile representa um arquivo de mídia armazenado no blob store.
// O ID também é a chave do blob (nome gerado, não adivinhável).
type MediaFile struct {
	ID          uuid.UUID `json:"id"`
	EvidenceID  uuid.UUID `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Kind        string    `json:"-"` // video | image | audio
}

// Evidence representa um item de evidência dentro de uma pasta
type Evidence struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	SecretKeyHash string      `json:"-"` // Nunca expor em JSON
	FolderID      uuid.UUID   `json:"-"`
	Videos        []MediaFile `json:"videos"`
	Images        []MediaFile `json:"images"`
	Audios        []MediaFile `json:"audios"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// AllFiles devolve todos os arquivos de mídia da evidência em uma única lista
// (usado na exclusão em cascata dos blobs)
func (e *Evidence) AllFiles() []MediaFile {
	files := make([]MediaFile, 0, len(e.Videos)+len(e.Images)+len(e.Audios))
	files = append(files, e.Videos...)
	files = append(files, e.Images...)
	files = append(files, e.Audios...)
	return files
}
