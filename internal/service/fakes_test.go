package service

import (
	"context"
	"fmt"

	"progress-service/internal/event"
	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memStore holds the in-memory aggregates behind the store fakes,
// mirroring the repository semantics: set additions are idempotent,
// learner writes are version-checked, issuance creation is keyed.
type memStore struct {
	learners  map[string]*models.Learner
	courses   map[string]*models.Course
	groups    map[string]*models.Group
	quizzes   map[string]*models.Quiz
	issuances map[string]*models.CertificateIssuance
}

func newMemStore() *memStore {
	return &memStore{
		learners:  make(map[string]*models.Learner),
		courses:   make(map[string]*models.Course),
		groups:    make(map[string]*models.Group),
		quizzes:   make(map[string]*models.Quiz),
		issuances: make(map[string]*models.CertificateIssuance),
	}
}

func (m *memStore) addCourse(course *models.Course) string {
	course.ID = primitive.NewObjectID()
	m.courses[course.ID.Hex()] = course
	return course.ID.Hex()
}

func (m *memStore) addQuiz(quiz *models.Quiz) string {
	quiz.ID = primitive.NewObjectID()
	m.quizzes[quiz.ID.Hex()] = quiz
	return quiz.ID.Hex()
}

func (m *memStore) addGroup(group *models.Group) string {
	group.ID = primitive.NewObjectID()
	m.groups[group.ID.Hex()] = group
	return group.ID.Hex()
}

type learnerFake struct{ s *memStore }

func (f learnerFake) EnsureLearner(ctx context.Context, userID string) (*models.Learner, error) {
	learner, ok := f.s.learners[userID]
	if !ok {
		learner = &models.Learner{ID: primitive.NewObjectID(), UserID: userID}
		f.s.learners[userID] = learner
	}
	copied := *learner
	copied.CoursesProgress = append([]models.CourseProgress(nil), learner.CoursesProgress...)
	return &copied, nil
}

func (f learnerFake) FindByUserID(ctx context.Context, userID string) (*models.Learner, error) {
	learner, ok := f.s.learners[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *learner
	copied.CoursesProgress = append([]models.CourseProgress(nil), learner.CoursesProgress...)
	return &copied, nil
}

func (f learnerFake) UpdateCoursesProgress(ctx context.Context, userID string, progress []models.CourseProgress, version int64) error {
	learner, ok := f.s.learners[userID]
	if !ok || learner.Version != version {
		return models.ErrVersionConflict
	}
	learner.CoursesProgress = progress
	learner.Version++
	return nil
}

type courseFake struct{ s *memStore }

func (f courseFake) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := f.s.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return course, nil
}

func (f courseFake) FindByStudent(ctx context.Context, userID string) ([]models.Course, error) {
	var out []models.Course
	for _, course := range f.s.courses {
		if course.IsEnrolled(userID) || course.HasCompleted(userID) {
			out = append(out, *course)
		}
	}
	return out, nil
}

func (f courseFake) AddEnrolledStudent(ctx context.Context, courseID, userID string) error {
	course, ok := f.s.courses[courseID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if course.HasCompleted(userID) || course.IsEnrolled(userID) {
		return nil
	}
	course.EnrolledStudents = append(course.EnrolledStudents, userID)
	return nil
}

func (f courseFake) AddEnrolledGroup(ctx context.Context, courseID, groupID string) error {
	course, ok := f.s.courses[courseID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for _, id := range course.EnrolledGroups {
		if id == groupID {
			return nil
		}
	}
	course.EnrolledGroups = append(course.EnrolledGroups, groupID)
	return nil
}

func (f courseFake) MoveToCompleted(ctx context.Context, courseID, userID string) error {
	course, ok := f.s.courses[courseID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := course.EnrolledStudents[:0]
	for _, id := range course.EnrolledStudents {
		if id != userID {
			kept = append(kept, id)
		}
	}
	course.EnrolledStudents = kept
	if !course.HasCompleted(userID) {
		course.CompletedStudents = append(course.CompletedStudents, userID)
	}
	return nil
}

type groupFake struct{ s *memStore }

func (f groupFake) FindByID(ctx context.Context, id string) (*models.Group, error) {
	group, ok := f.s.groups[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return group, nil
}

func (f groupFake) FindByName(ctx context.Context, name string) (*models.Group, error) {
	for _, group := range f.s.groups {
		if group.Name == name {
			return group, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f groupFake) FindByLeader(ctx context.Context, userID string) ([]models.Group, error) {
	var out []models.Group
	for _, group := range f.s.groups {
		if group.IsLeader(userID) {
			out = append(out, *group)
		}
	}
	return out, nil
}

func (f groupFake) Create(ctx context.Context, group *models.Group) error {
	for _, existing := range f.s.groups {
		if existing.Name == group.Name {
			return fmt.Errorf("duplicate group name %q", group.Name)
		}
	}
	f.s.addGroup(group)
	return nil
}

func (f groupFake) AddMember(ctx context.Context, groupID, userID, role string) error {
	group, ok := f.s.groups[groupID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if group.IsMember(userID) {
		return nil
	}
	if role == models.GroupRoleLeader {
		group.Leaders = append(group.Leaders, userID)
	} else {
		group.Students = append(group.Students, userID)
	}
	return nil
}

func (f groupFake) AddCourse(ctx context.Context, groupID, courseID string) error {
	group, ok := f.s.groups[groupID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for _, id := range group.Courses {
		if id == courseID {
			return nil
		}
	}
	group.Courses = append(group.Courses, courseID)
	return nil
}

type quizFake struct{ s *memStore }

func (f quizFake) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, ok := f.s.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return quiz, nil
}

func (f quizFake) FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, quiz := range f.s.quizzes {
		if quiz.CourseID == courseID {
			out = append(out, *quiz)
		}
	}
	return out, nil
}

type issuanceFake struct{ s *memStore }

func (f issuanceFake) CreateIfAbsent(ctx context.Context, issuance *models.CertificateIssuance) (bool, error) {
	if _, ok := f.s.issuances[issuance.ID]; ok {
		return false, nil
	}
	f.s.issuances[issuance.ID] = issuance
	return true, nil
}

// testEnv wires every service against one shared memStore and a mock
// publisher.
type testEnv struct {
	store      *memStore
	pub        *event.MockPublisher
	enrollment *EnrollmentService
	completion *CompletionService
	groups     *GroupService
	progress   *ProgressService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	pub := event.NewMockPublisher()
	learners := learnerFake{store}
	courses := courseFake{store}
	groups := groupFake{store}
	quizzes := quizFake{store}
	certificates := NewCertificateService(issuanceFake{store}, pub)
	return &testEnv{
		store:      store,
		pub:        pub,
		enrollment: NewEnrollmentService(learners, courses, groups, pub),
		completion: NewCompletionService(learners, courses, quizzes, certificates, pub),
		groups:     NewGroupService(groups, pub),
		progress:   NewProgressService(learners, courses, quizzes),
	}
}

func (e *testEnv) eventTypes() []models.EventType {
	types := make([]models.EventType, 0, len(e.pub.Events))
	for _, ev := range e.pub.Events {
		types = append(types, ev.EventType)
	}
	return types
}
