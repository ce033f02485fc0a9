package routes

import (
	"net/http"

	"mentormatch_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// SetupDocsRoutes - Swagger UI и сырой OpenAPI документ
func SetupDocsRoutes(r *gin.Engine, apiPrefix string) {
	if docs.SwaggerInfo.BasePath != apiPrefix {
		docs.SwaggerInfo.BasePath = apiPrefix
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})
	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/openapi.json"),
	))
	r.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})
}
