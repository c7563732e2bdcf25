package model

import "time"

// PetSize はペットの体格を表す。
type PetSize string

const (
	PetSizeSmall  PetSize = "SMALL"
	PetSizeMedium PetSize = "MEDIUM"
	PetSizeLarge  PetSize = "LARGE"
)

// Species はペットの種を表す。
type Species string

const (
	SpeciesDog   Species = "DOG"
	SpeciesCat   Species = "CAT"
	SpeciesOther Species = "OTHER"
)

// ペット体重の許容範囲（kg）
const (
	MinPetWeight = 0.01
	MaxPetWeight = 999.99
)

// Pet はシェルターに保護されているペットを表す。
// DeletedAtが設定されたペットは論理削除済みで、通常の検索対象外となる。
type Pet struct {
	ID           int64
	Name         string
	PetTypeID    int64
	ShelterID    int64
	IsAdopted    bool
	IsVaccinated bool
	Size         PetSize
	Weight       float64
	Color        string
	DateOfBirth  time.Time
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// PetRecord はペットの診療・処置記録を表す。
type PetRecord struct {
	ID           int64
	PetID        int64
	IsVaccinated bool
	Intervention string
	Observation  string
	Date         time.Time
	CreatedBy    string
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// PetType はペットの種と犬種の組み合わせを表す。
type PetType struct {
	ID      int64
	Species Species
	BreedID *int64
}

// PetBreed は外部犬種APIから取り込んだ犬種を表す。
type PetBreed struct {
	ID            int64
	ExternalAPIID string
	Name          string
	Description   string
}

// DogBreed は外部犬種APIが返す犬種情報を表す。
type DogBreed struct {
	ID             string
	Name           string
	Description    string
	LifeMin        int
	LifeMax        int
	Hypoallergenic bool
}
