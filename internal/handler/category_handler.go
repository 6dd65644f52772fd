package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// ListCategories handles GET /api/categories
func ListCategories(c *gin.Context) {
	cats := category.List()
	utils.SuccessWithTotal(c, http.StatusOK, "Categories retrieved", cats, len(cats))
}
