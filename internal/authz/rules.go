package authz

import (
	"net/http"

	"github.com/hitoshi/furcode/internal/model"
)

const (
	user    = model.RoleUser
	manager = model.RoleManager
	admin   = model.RoleAdmin
)

// DefaultRules はAPIのルール表を返す。
// パスパラメータは任意の1セグメントに一致し、/all などのリテラルとの重なりはリテラル数の多いルールが優先される。
// GET /api/v1/shelter/all は明示的に既定判定へ委ね、ペット参照と寄付はルールを持たず既定判定に従う。
func DefaultRules() []Rule {
	return []Rule{
		// 公開エンドポイント
		Public(http.MethodPost, "/api/v1/auth/login"),
		Public(http.MethodPost, "/api/v1/person"),
		Public(http.MethodGet, "/api/v1/breed/all"),
		Public(http.MethodGet, "/api/v1/breed/{id}"),
		Public(http.MethodGet, "/api/v1/breed/name/{name}"),
		Public(http.MethodGet, "/health"),
		Public(http.MethodGet, "/metrics"),

		// person
		Require(http.MethodPost, "/api/v1/person/{id}/create-shelter", user),
		Require(http.MethodGet, "/api/v1/person/all", user),
		Require(http.MethodGet, "/api/v1/person/{id}", user),
		Require(http.MethodPatch, "/api/v1/person/update/{id}", user),
		Require(http.MethodPatch, "/api/v1/person/set-person-role/{id}", manager),
		Require(http.MethodDelete, "/api/v1/person/delete/{id}", manager),
		Require(http.MethodPost, "/api/v1/person/{id}/add-person-to-shelter", manager),
		Require(http.MethodGet, "/api/v1/person/{id}/get-all-donations", admin),
		Require(http.MethodGet, "/api/v1/person/get-all-persons-in-shelter/{id}", admin),

		// pet
		Require(http.MethodPost, "/api/v1/pet", admin),
		Require(http.MethodPatch, "/api/v1/pet/update/{id}", admin),
		Require(http.MethodDelete, "/api/v1/pet/delete/{id}", manager),
		Require(http.MethodPost, "/api/v1/pet/{id}/create-record", admin),
		Require(http.MethodGet, "/api/v1/pet/{id}/record", admin),
		Require(http.MethodPost, "/api/v1/pet/restore/{id}", manager),
		Require(http.MethodGet, "/api/v1/pet/{petId}/records/deleted", manager),
		Require(http.MethodGet, "/api/v1/pet/deleted", manager),
		Require(http.MethodGet, "/api/v1/pet/deleted/{id}", manager),
		Require(http.MethodPost, "/api/v1/pet-type", admin),

		// shelter
		UseDefault(http.MethodGet, "/api/v1/shelter/all"),
		Require(http.MethodPost, "/api/v1/shelter", user),
		Require(http.MethodGet, "/api/v1/shelter/{id}", user),
		Require(http.MethodDelete, "/api/v1/shelter/delete/{id}", manager),
		Require(http.MethodPut, "/api/v1/shelter/update/{id}", manager),
		Require(http.MethodGet, "/api/v1/shelter/{id}/get-all-donations", admin),

		// adoption-request
		Require(http.MethodPost, "/api/v1/adoption-request", user),
		Require(http.MethodPatch, "/api/v1/adoption-request/update/{id}", user),
		Require(http.MethodGet, "/api/v1/adoption-request/all", admin),
		Require(http.MethodGet, "/api/v1/adoption-request/{id}", admin),
		Require(http.MethodDelete, "/api/v1/adoption-request/delete/{id}", manager),

		// favorite
		Require(http.MethodPost, "/api/v1/favorite/add", user),
		Require(http.MethodGet, "/api/v1/favorite/{personId}/{petId}", user),
		Require(http.MethodGet, "/api/v1/favorite/person/{id}", user),
		Require(http.MethodDelete, "/api/v1/favorite/delete/{personId}/{petId}", user),
	}
}
