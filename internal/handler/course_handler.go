package handler

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/dto"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

// CourseHandler handles course and lecture HTTP requests
type CourseHandler struct {
	courses service.CourseService
}

// NewCourseHandler creates a CourseHandler
func NewCourseHandler(courses service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List handles GET /api/v1/courses?keyword=&category=
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), c.Query("keyword"), c.Query("category"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Data(c, gin.H{"courses": courses})
}

// Create handles POST /api/v1/createcourse
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please add all fields"))
		return
	}

	poster, err := openUpload(c, "file")
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer poster.Close()

	if _, err := h.courses.Create(c.Request.Context(), req.Title, req.Description, req.Category, req.CreatedBy, poster); err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Course Created Successfully. You can add lectures now."})
}

// GetLectures handles GET /api/v1/course/:id
func (h *CourseHandler) GetLectures(c *gin.Context) {
	courseID, err := pathObjectID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	lectures, err := h.courses.GetLectures(c.Request.Context(), courseID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Data(c, gin.H{"lectures": lectures})
}

// AddLecture handles POST /api/v1/course/:id
func (h *CourseHandler) AddLecture(c *gin.Context) {
	courseID, err := pathObjectID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req dto.AddLectureRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please add all fields"))
		return
	}

	video, err := openUpload(c, "file")
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer video.Close()

	if err := h.courses.AddLecture(c.Request.Context(), courseID, req.Title, req.Description, video); err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Lecture added in Course"})
}

// DeleteCourse handles DELETE /api/v1/course/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, err := pathObjectID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.courses.DeleteCourse(c.Request.Context(), courseID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Course Deleted Successfully")
}

// DeleteLecture handles DELETE /api/v1/lecture?courseId=&lectureId=
func (h *CourseHandler) DeleteLecture(c *gin.Context) {
	courseID, err := bson.ObjectIDFromHex(c.Query("courseId"))
	if err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Invalid course id"))
		return
	}
	lectureID, err := bson.ObjectIDFromHex(c.Query("lectureId"))
	if err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Invalid lecture id"))
		return
	}

	if err := h.courses.DeleteLecture(c.Request.Context(), courseID, lectureID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Lecture Deleted Successfully")
}
