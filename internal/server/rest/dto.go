package rest

import (
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/services"
)

const dateLayout = "2006-01-02"

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type platformRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r platformRequest) input() services.PlatformInput {
	return services.PlatformInput{Name: r.Name, URL: r.URL, Username: r.Username, Password: r.Password}
}

type platformResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	CreatedDate string `json:"createdDate"`
}

func toPlatformResponse(p *models.Platform) platformResponse {
	return platformResponse{
		ID:          p.ID,
		Name:        p.Name,
		URL:         p.URL,
		Username:    p.Username,
		Password:    p.Password,
		CreatedDate: p.CreatedDate.Format(dateLayout),
	}
}

// pageResponse mirrors the paging envelope the client expects.
type pageResponse struct {
	Content          []platformResponse `json:"content"`
	Number           int                `json:"number"`
	Size             int                `json:"size"`
	TotalElements    int                `json:"totalElements"`
	TotalPages       int                `json:"totalPages"`
	First            bool               `json:"first"`
	Last             bool               `json:"last"`
	Empty            bool               `json:"empty"`
	NumberOfElements int                `json:"numberOfElements"`
}

func toPageResponse(p *services.Page) pageResponse {
	content := make([]platformResponse, 0, len(p.Content))
	for i := range p.Content {
		content = append(content, toPlatformResponse(&p.Content[i]))
	}
	totalPages := 0
	if p.Total > 0 {
		totalPages = (p.Total + p.Size - 1) / p.Size
	}
	return pageResponse{
		Content:          content,
		Number:           p.Number,
		Size:             p.Size,
		TotalElements:    p.Total,
		TotalPages:       totalPages,
		First:            p.Number == 0,
		Last:             p.Number >= totalPages-1,
		Empty:            len(content) == 0,
		NumberOfElements: len(content),
	}
}
