package inbound

import (
	"net/http"

	"github.com/shandysiswandi/gooath/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, virtual VirtualControl) {
	end := &HTTPEndpoint{uc: uc, virtual: virtual}

	r.GET("/api/v1/oath/objects", end.ManagedObjects)

	r.GET("/api/v1/oath/devices/:device", end.GetDevice)
	r.PATCH("/api/v1/oath/devices/:device", end.RenameDevice)
	r.DELETE("/api/v1/oath/devices/:device", end.ForgetDevice)
	r.POST("/api/v1/oath/devices/:device/password", end.SavePassword)
	r.PUT("/api/v1/oath/devices/:device/password", end.ChangePassword)

	r.POST("/api/v1/oath/devices/:device/credentials", end.AddCredential)
	r.POST("/api/v1/oath/devices/:device/credentials/:credential/generate", end.GenerateCode)
	r.POST("/api/v1/oath/devices/:device/credentials/:credential/copy", end.CopyCode)
	r.POST("/api/v1/oath/devices/:device/credentials/:credential/type", end.TypeCode)
	r.DELETE("/api/v1/oath/devices/:device/credentials/:credential", end.DeleteCredential)

	r.GETRaw("/api/v1/oath/stream", http.HandlerFunc(end.Stream))

	if virtual != nil {
		r.POST("/api/v1/virtual/devices", end.CreateVirtualDevice)
		r.POST("/api/v1/virtual/devices/:device/plug", end.PlugVirtualDevice)
		r.POST("/api/v1/virtual/devices/:device/unplug", end.UnplugVirtualDevice)
	}
}
