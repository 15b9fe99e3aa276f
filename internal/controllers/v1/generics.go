package v1

import (
	"reflect"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/gin-gonic/gin"
)

// resourceOptionsDetail returns the appropriate response for an HTTP OPTIONS request for a specific resource.
func resourceOptionsDetail[R models.Account | models.Category | models.MatchRule | models.Transaction](co Controller, c *gin.Context, resource R) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.DB.First(&resource, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// merge sets the fields of model named in fields to their values in update.
//
// The names are those returned by httputil.GetBodyFields for the editable
// of the resource, which uses the same field names as the model.
func merge[M models.Account | models.Category | models.MatchRule | models.Transaction](model *M, update M, fields []any) {
	dst := reflect.ValueOf(model).Elem()
	src := reflect.ValueOf(update)

	for _, field := range fields {
		name, ok := field.(string)
		if !ok {
			continue
		}

		if v := src.FieldByName(name); v.IsValid() {
			dst.FieldByName(name).Set(v)
		}
	}
}
